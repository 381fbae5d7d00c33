package model_test

import (
	"testing"

	model "github.com/okian/matchbox/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPairKey(t *testing.T) {
	Convey("Given two actor ids", t, func() {
		Convey("When the ids are supplied in either order", func() {
			Convey("Then the canonical key is identical", func() {
				So(model.PairKey("actor-b", "actor-a"), ShouldEqual, model.PairKey("actor-a", "actor-b"))
				So(model.PairKey("actor-a", "actor-b"), ShouldEqual, "actor-a|actor-b")
			})
		})

		Convey("When building edge ids", func() {
			Convey("Then the profile id is part of the identity", func() {
				So(model.EdgeID("b", "a", "p1"), ShouldEqual, "a|b:p1")
				So(model.EdgeID("a", "b", "p1"), ShouldNotEqual, model.EdgeID("a", "b", "p2"))
			})
		})
	})
}

func TestNormalizeSet(t *testing.T) {
	Convey("Given a list field with mixed case and duplicates", t, func() {
		set := model.NormalizeSet([]string{"iOS", "Android", "ios", "  Android ", ""})

		Convey("Then it is deduplicated case-insensitively", func() {
			So(len(set), ShouldEqual, 2)
			So(set, ShouldContainKey, "ios")
			So(set, ShouldContainKey, "android")
		})
	})
}

func TestFilterMatches(t *testing.T) {
	Convey("Given an actor with platforms and a stage", t, func() {
		actor := model.Actor{
			ID:        "a1",
			Type:      model.ActorCompany,
			Platforms: []string{"mobile", "console"},
			Stage:     "growth",
		}

		Convey("When the filter names a shared platform", func() {
			f := model.Filter{Platforms: []string{"Mobile"}}
			So(f.Matches(&actor), ShouldBeTrue)
		})

		Convey("When the filter names a disjoint platform", func() {
			f := model.Filter{Platforms: []string{"pc"}}
			So(f.Matches(&actor), ShouldBeFalse)
		})

		Convey("When the filter names a different stage", func() {
			f := model.Filter{Stages: []string{"seed"}}
			So(f.Matches(&actor), ShouldBeFalse)
		})

		Convey("When the filter is empty", func() {
			f := model.Filter{}
			So(f.Empty(), ShouldBeTrue)
			So(f.Matches(&actor), ShouldBeTrue)
		})
	})
}

func TestNormalizeMethod(t *testing.T) {
	Convey("Given the supported normalization methods", t, func() {
		So(model.NormalizeExpZ.Valid(), ShouldBeTrue)
		So(model.NormalizeZScore.Valid(), ShouldBeTrue)
		So(model.NormalizeMinMax.Valid(), ShouldBeTrue)

		Convey("Then unknown methods are rejected", func() {
			So(model.NormalizeMethod("softmax").Valid(), ShouldBeFalse)
		})
	})
}

func TestWeightProfileClone(t *testing.T) {
	Convey("Given a weight profile", t, func() {
		p := model.WeightProfile{
			ID:      "p1",
			Weights: map[string]float64{"bipartite": 1.0},
		}

		Convey("When cloned and mutated", func() {
			c := p.Clone()
			c.Weights["bipartite"] = 0.5

			Convey("Then the original is unchanged", func() {
				So(p.Weights["bipartite"], ShouldEqual, 1.0)
			})
		})
	})
}
