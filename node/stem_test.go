package node_test

import (
	"fmt"

	"object-mapper/node"
)

func ExampleStem() {
	st := node.NewStem("id", nil)
	fmt.Println(st.Next(), st.Next(), st.Next())

	st = node.NewStem("val", map[string]struct{}{"val2": {}})
	fmt.Println(st.Next(), st.Next(), st.Next())

	st = node.NewStem("#obj", nil)
	fmt.Println(st.Label("order"), st.Label("line"), st.Label("order"), st.Labeled("item"))

	// Output:
	// id1 id2 id3
	// val1 val3 val4
	// #obj1 #obj2 #obj1 false
}
