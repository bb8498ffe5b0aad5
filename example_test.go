package bonsai_test

import (
	"fmt"
	"log"

	"github.com/mathemads/bonsai"
	"github.com/mathemads/bonsai/pkg/tree"
)

func ExampleConvert() {
	b := tree.NewBuilder()
	root := b.Decision("geo")
	abroad := b.Leaf(0.10).
		With("geo", tree.ListValue(tree.TextValue("UK"), tree.TextValue("DE")))
	b.Connect(root, abroad, tree.Membership, tree.ListValue(tree.TextValue("UK"), tree.TextValue("DE")))
	b.ConnectDefault(root, b.DefaultLeaf(0.05))

	t, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	text, err := bonsai.Convert(t, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(text)
	// Output:
	// if geo in ("UK","DE"):
	// 	0.1000
	// else:
	// 	0.0500
}
