package shaperig_test

import (
	"fmt"
	"log"
	"sort"

	"github.com/aretw0/shaperig"
)

// ExampleNew demonstrates building a small rig in memory and splitting it
// into left/right halves. No host application is needed: the default
// in-memory host is enough for structural work.
func ExampleNew() {
	// 1. Open a session. The rest shape is created for you.
	session, err := shaperig.New("Face")
	if err != nil {
		log.Fatal(err)
	}
	system := session.System()

	// 2. Add a symmetric slider. The "_X" suffix marks it as sided.
	smile, err := system.CreateSlider("Smile_X", nil)
	if err != nil {
		log.Fatal(err)
	}

	// 3. Attach a planar falloff across the X axis.
	fo, err := system.CreatePlanarFalloff("Falloff_X", "X", 1, 0.33, -0.33, -1)
	if err != nil {
		log.Fatal(err)
	}
	if err := smile.Progression().AddFalloff(fo); err != nil {
		log.Fatal(err)
	}

	// 4. Split. The source system is never mutated; the result is a
	// detached copy with one slider per side.
	split, err := system.Split(nil)
	if err != nil {
		log.Fatal(err)
	}

	names := make([]string, 0, len(split.Sliders()))
	for _, sl := range split.Sliders() {
		names = append(names, sl.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(name)
	}
	// Output:
	// Smile_L
	// Smile_R
}

// ExampleSession_Dump shows the round trip through the JSON definition.
func ExampleSession_Dump() {
	session, err := shaperig.New("Brow")
	if err != nil {
		log.Fatal(err)
	}
	if _, err := session.System().CreateSlider("Raise", nil); err != nil {
		log.Fatal(err)
	}

	data, err := session.Dump()
	if err != nil {
		log.Fatal(err)
	}

	// Load the definition into a fresh session, creating every shape and
	// slider on its host as we go.
	restored, err := shaperig.New("Scratch")
	if err != nil {
		log.Fatal(err)
	}
	if err := restored.Load(data, true, nil); err != nil {
		log.Fatal(err)
	}

	fmt.Println(restored.System().Name())
	for _, ctrl := range restored.System().ControllersByDepth() {
		fmt.Printf("%s %s\n", ctrl.Kind(), ctrl.Name())
	}
	// Output:
	// Brow
	// Slider Raise
}
