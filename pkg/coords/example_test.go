package coords_test

import (
	"fmt"

	"github.com/matzehuels/gramframe/pkg/coords"
)

func ExampleScreenToData() {
	v := coords.Viewport{Box: coords.Box{Left: 60, Top: 15, Width: 800, Height: 400}}
	d := coords.Domain{TimeMin: 0, TimeMax: 60, FreqMin: 0, FreqMax: 100}

	dp, ok := coords.ScreenToData(coords.Point{X: 460, Y: 215}, v, d)
	fmt.Println(ok, dp.Time, dp.Freq)

	_, ok = coords.ScreenToData(coords.Point{X: 10, Y: 10}, v, d)
	fmt.Println(ok)
	// Output:
	// true 30 50
	// false
}
