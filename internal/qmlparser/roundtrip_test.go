package qmlparser

import (
	"testing"

	"github.com/asivery/qmldiff/internal/qmlast"
	"github.com/asivery/qmldiff/internal/qmlemitter"
	"github.com/asivery/qmldiff/internal/qmltoken"
	"github.com/google/go-cmp/cmp"
)

// ignorePos makes cmp.Diff blind to source positions, which legitimately
// differ between a freshly parsed tree and one re-parsed from the emitter's
// reformatted output (spec §8 property 2: round-tripping is about
// structural equality, not byte-identical positions).
var ignorePos = cmp.Comparer(func(a, b qmltoken.Token) bool {
	return a.Type == b.Type && a.Literal == b.Literal
})

func assertRoundTrips(t *testing.T, src string) qmlast.Tree {
	t.Helper()
	first := parseOK(t, src)
	emitted := qmlemitter.Emit(first)
	second := parseOK(t, emitted)
	if diff := cmp.Diff(first, second, ignorePos); diff != "" {
		t.Fatalf("emit(parse(s)) did not round-trip structurally (-first +second):\n%s", diff)
	}
	return second
}

func TestRoundTripSimpleObject(t *testing.T) {
	assertRoundTrips(t, `Rectangle {
		width: 100
		height: 200
		color: "red"
	}`)
}

func TestRoundTripNestedAndFunctions(t *testing.T) {
	assertRoundTrips(t, `Item {
		property int count: 0
		signal activated(var reason)
		function reset() { count = 0 }
		enum Mode { Idle, Busy = 2 }
		Text {
			text: "hi"
		}
	}`)
}

func TestRoundTripIsAFixedPointOnSecondPass(t *testing.T) {
	second := assertRoundTrips(t, `Rectangle {
		Item {
			width: 1
		}
	}`)
	thirdSrc := qmlemitter.Emit(second)
	third := parseOK(t, thirdSrc)
	if diff := cmp.Diff(second, third, ignorePos); diff != "" {
		t.Fatalf("second emit pass was not a fixed point (-second +third):\n%s", diff)
	}
}
