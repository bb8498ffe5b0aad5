package bonsai

// Version is the library release, overridable at link time.
var Version = "0.3.0"
