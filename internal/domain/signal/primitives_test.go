package signal_test

import (
	"math"
	"testing"
	"time"

	model "github.com/okian/matchbox/internal/domain/model"
	signal "github.com/okian/matchbox/internal/domain/signal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDateProximity(t *testing.T) {
	Convey("Given the exponential date proximity signal", t, func() {
		base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

		Convey("When the dates are identical", func() {
			So(signal.DateProximity(base, base, 30), ShouldEqual, 1)
		})

		Convey("When the delta equals the horizon", func() {
			other := base.AddDate(0, 0, 30)

			Convey("Then similarity is exp(-1), not 0", func() {
				So(signal.DateProximity(base, other, 30), ShouldAlmostEqual, math.Exp(-1), 1e-9)
			})
		})

		Convey("When the delta is far beyond the horizon", func() {
			other := base.AddDate(10, 0, 0)
			v := signal.DateProximity(base, other, 30)
			So(v, ShouldBeGreaterThanOrEqualTo, 0)
			So(v, ShouldBeLessThan, 0.001)
		})

		Convey("When order is reversed", func() {
			other := base.AddDate(0, 0, 12)
			So(signal.DateProximity(base, other, 30), ShouldEqual, signal.DateProximity(other, base, 30))
		})
	})
}

func TestJaccardSimilarity(t *testing.T) {
	Convey("Given the Jaccard list similarity", t, func() {
		Convey("When both lists are empty", func() {
			Convey("Then similarity is 0, absence of shared signal is not agreement", func() {
				So(signal.JaccardSimilarity(nil, nil), ShouldEqual, 0)
				So(signal.JaccardSimilarity([]string{}, []string{}), ShouldEqual, 0)
			})
		})

		Convey("When lists are identical", func() {
			So(signal.JaccardSimilarity([]string{"pc", "mobile"}, []string{"Mobile", "PC"}), ShouldEqual, 1)
		})

		Convey("When lists are disjoint and non-empty", func() {
			So(signal.JaccardSimilarity([]string{"pc"}, []string{"console"}), ShouldEqual, 0)
		})

		Convey("When lists partially overlap", func() {
			So(signal.JaccardSimilarity([]string{"a", "b"}, []string{"b", "c"}), ShouldAlmostEqual, 1.0/3.0, 1e-9)
		})

		Convey("When duplicates and casing differ", func() {
			So(signal.JaccardSimilarity([]string{"PC", "pc", "pc "}, []string{"pc"}), ShouldEqual, 1)
		})
	})
}

func TestLevenshteinSimilarity(t *testing.T) {
	Convey("Given the Levenshtein string similarity", t, func() {
		Convey("When both strings are empty", func() {
			So(signal.LevenshteinSimilarity("", ""), ShouldEqual, 1)
		})

		Convey("When exactly one string is empty", func() {
			So(signal.LevenshteinSimilarity("", "studio"), ShouldEqual, 0)
			So(signal.LevenshteinSimilarity("studio", ""), ShouldEqual, 0)
		})

		Convey("When the strings are identical", func() {
			So(signal.LevenshteinSimilarity("hypergiant", "hypergiant"), ShouldEqual, 1)
		})

		Convey("When one edit apart", func() {
			So(signal.LevenshteinSimilarity("kitten", "mitten"), ShouldAlmostEqual, 1-1.0/6.0, 1e-9)
		})

		Convey("When completely different", func() {
			v := signal.LevenshteinSimilarity("abc", "xyz")
			So(v, ShouldEqual, 0)
		})
	})
}

func TestBipartiteMatch(t *testing.T) {
	Convey("Given the directional bipartite matcher", t, func() {
		Convey("When the needs side is empty", func() {
			So(signal.BipartiteMatch([]string{"x"}, nil), ShouldEqual, 0)
		})

		Convey("When all needs are satisfied", func() {
			So(signal.BipartiteMatch([]string{"art", "audio"}, []string{"audio"}), ShouldEqual, 1)
		})

		Convey("When half the needs are satisfied", func() {
			So(signal.BipartiteMatch([]string{"art"}, []string{"art", "qa"}), ShouldEqual, 0.5)
		})

		Convey("When directions differ", func() {
			a := &model.Actor{ID: "a", Capabilities: []string{"x", "y"}, Needs: []string{"z"}}
			b := &model.Actor{ID: "b", Capabilities: []string{"z"}, Needs: []string{"x"}}

			Convey("Then the bidirectional form is symmetric", func() {
				So(signal.BidirectionalBipartite(a, b), ShouldEqual, signal.BidirectionalBipartite(b, a))
				So(signal.BidirectionalBipartite(a, b), ShouldEqual, 1)
			})
		})
	})
}

func TestStageComplement(t *testing.T) {
	Convey("Given the stage complementarity table", t, func() {
		Convey("When both stages are known", func() {
			v, ok := signal.StageComplement("seed", "mature")
			So(ok, ShouldBeTrue)
			So(v, ShouldBeGreaterThan, 0)

			Convey("Then lookups are case-insensitive and symmetric", func() {
				rev, ok := signal.StageComplement("Mature", "Seed")
				So(ok, ShouldBeTrue)
				So(rev, ShouldEqual, v)
			})
		})

		Convey("When a stage is unknown", func() {
			_, ok := signal.StageComplement("unicorn", "seed")
			So(ok, ShouldBeFalse)
		})

		Convey("When a stage is empty", func() {
			_, ok := signal.StageComplement("", "seed")
			So(ok, ShouldBeFalse)
		})

		Convey("Then complementary stages outrank same-stage pairs", func() {
			comp, _ := signal.StageComplement("seed", "mature")
			same, _ := signal.StageComplement("seed", "seed")
			So(comp, ShouldBeGreaterThan, same)
		})
	})
}

func TestPlatformAndMarketOverlap(t *testing.T) {
	Convey("Given actors with platform and market lists", t, func() {
		a := &model.Actor{Platforms: []string{"pc", "mobile"}, Markets: []string{"na", "eu"}}
		b := &model.Actor{Platforms: []string{"mobile"}, Markets: []string{"apac"}}

		So(signal.PlatformOverlap(a, b), ShouldAlmostEqual, 0.5, 1e-9)
		So(signal.MarketOverlap(a, b), ShouldEqual, 0)
	})
}

func TestTokenize(t *testing.T) {
	Convey("Given free text with punctuation and case", t, func() {
		toks := signal.Tokenize("Co-op RPGs, built for PC & mobile!")

		Convey("Then tokens are lowercased and split on non-alphanumerics", func() {
			So(toks, ShouldContain, "co")
			So(toks, ShouldContain, "op")
			So(toks, ShouldContain, "rpgs")
			So(toks, ShouldContain, "mobile")
			So(toks, ShouldNotContain, "&")
		})
	})
}
