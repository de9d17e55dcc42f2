package sidereal_test

import (
	"fmt"

	"github.com/matzehuels/jyotish/pkg/core/sidereal"
)

func ExampleToSignInfo() {
	si := sidereal.ToSignInfo(123.75)
	fmt.Println(si.Sign, si.Degree, si.Minute)
	// Output: Leo 3 45
}

func ExampleToNakshatraInfo() {
	ni := sidereal.ToNakshatraInfo(45)
	fmt.Println(ni.Nakshatra, ni.Pada)
	// Output: Rohini 2
}

func ExampleAyanamsha() {
	fmt.Printf("%.4f\n", sidereal.Ayanamsha(sidereal.J2000))
	// Output: 24.0417
}
