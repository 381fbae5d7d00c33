package signal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	model "github.com/okian/matchbox/internal/domain/model"
	signal "github.com/okian/matchbox/internal/domain/signal"
	. "github.com/smartystreets/goconvey/convey"
)

func testCorpus() []model.Actor {
	return []model.Actor{
		{
			ID: "studio-1", Name: "Nightjar Studio", Type: model.ActorCompany,
			Categories:   []string{"games", "indie"},
			Platforms:    []string{"pc", "console"},
			Markets:      []string{"north america"},
			Capabilities: []string{"art", "design"},
			Needs:        []string{"publishing"},
			Description:  "Indie studio building narrative adventure games for pc and console",
			Stage:        "seed",
			Numeric:      map[string]float64{"team_size": 8},
			Dates:        map[string]time.Time{"founded": time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)},
		},
		{
			ID: "pub-1", Name: "Harbor Publishing", Type: model.ActorCompany,
			Categories:   []string{"games", "publishing"},
			Platforms:    []string{"pc", "mobile"},
			Markets:      []string{"north america", "europe"},
			Capabilities: []string{"publishing", "marketing"},
			Needs:        []string{"art"},
			Description:  "Publisher funding and marketing narrative games worldwide",
			Stage:        "mature",
			Numeric:      map[string]float64{"team_size": 120},
			Dates:        map[string]time.Time{"founded": time.Date(2012, 1, 15, 0, 0, 0, 0, time.UTC)},
		},
		{
			ID: "studio-2", Name: "Glass Fox Games", Type: model.ActorCompany,
			Categories:  []string{"games"},
			Platforms:   []string{"mobile"},
			Description: "Mobile puzzle games with generative art",
			Stage:       "early",
			Numeric:     map[string]float64{"team_size": 15},
		},
	}
}

func TestEngineInitialize(t *testing.T) {
	Convey("Given a fresh signal engine", t, func() {
		ctx := context.Background()
		engine := signal.New()

		Convey("When used before initialization", func() {
			corpus := testCorpus()
			_, err := engine.CalculateMetrics(ctx, &corpus[0], &corpus[1])

			Convey("Then it fails with ErrNotInitialized", func() {
				So(errors.Is(err, signal.ErrNotInitialized), ShouldBeTrue)
			})
		})

		Convey("When initialized once", func() {
			So(engine.Initialize(ctx, testCorpus()), ShouldBeNil)
			So(engine.Ready(), ShouldBeTrue)

			Convey("Then repeated initialization is rejected", func() {
				err := engine.Initialize(ctx, testCorpus())
				So(errors.Is(err, signal.ErrAlreadyInitialized), ShouldBeTrue)
			})
		})
	})
}

func TestEngineZExpSimilarity(t *testing.T) {
	Convey("Given an initialized engine", t, func() {
		ctx := context.Background()
		engine := signal.New()
		So(engine.Initialize(ctx, testCorpus()), ShouldBeNil)

		Convey("When comparing equal values", func() {
			v, err := engine.ZExpSimilarity(10, 10, "team_size", 1)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 1)
		})

		Convey("When values diverge", func() {
			near, err := engine.ZExpSimilarity(8, 15, "team_size", 1)
			So(err, ShouldBeNil)
			far, err := engine.ZExpSimilarity(8, 120, "team_size", 1)
			So(err, ShouldBeNil)

			Convey("Then similarity decreases with distance", func() {
				So(near, ShouldBeGreaterThan, far)
				So(far, ShouldBeGreaterThanOrEqualTo, 0)
			})
		})

		Convey("When the field has no corpus stats", func() {
			_, err := engine.ZExpSimilarity(1, 2, "revenue", 1)
			So(errors.Is(err, signal.ErrUnknownField), ShouldBeTrue)
		})
	})
}

func TestEngineTextCosine(t *testing.T) {
	Convey("Given an initialized engine", t, func() {
		ctx := context.Background()
		corpus := testCorpus()
		engine := signal.New()
		So(engine.Initialize(ctx, corpus), ShouldBeNil)

		Convey("When comparing related descriptions", func() {
			v, err := engine.TextCosineSimilarity(&corpus[0], &corpus[1])
			So(err, ShouldBeNil)

			Convey("Then similarity is positive and bounded", func() {
				So(v, ShouldBeGreaterThan, 0)
				So(v, ShouldBeLessThanOrEqualTo, 1)
			})
		})

		Convey("When one side has no text", func() {
			empty := model.Actor{ID: "void"}
			v, err := engine.TextCosineSimilarity(&corpus[0], &empty)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 0)
		})

		Convey("When comparing an actor with itself", func() {
			v, err := engine.TextCosineSimilarity(&corpus[0], &corpus[0])
			So(err, ShouldBeNil)
			So(v, ShouldAlmostEqual, 1, 1e-9)
		})
	})
}

func TestEngineCalculateMetrics(t *testing.T) {
	Convey("Given an initialized engine and a corpus", t, func() {
		ctx := context.Background()
		corpus := testCorpus()
		engine := signal.New()
		So(engine.Initialize(ctx, corpus), ShouldBeNil)

		Convey("When comparing two fully populated actors", func() {
			metrics, err := engine.CalculateMetrics(ctx, &corpus[0], &corpus[1])
			So(err, ShouldBeNil)

			Convey("Then every applicable signal is present", func() {
				So(metrics, ShouldContainKey, signal.NameCategoryOverlap)
				So(metrics, ShouldContainKey, signal.NamePlatformOverlap)
				So(metrics, ShouldContainKey, signal.NameMarketOverlap)
				So(metrics, ShouldContainKey, signal.NameBipartite)
				So(metrics, ShouldContainKey, signal.NameStageComplement)
				So(metrics, ShouldContainKey, signal.NameTextSimilarity)
				So(metrics, ShouldContainKey, signal.NameDateProximity)
				So(metrics, ShouldContainKey, signal.NumericSignalName("team_size"))
			})

			Convey("Then the perfect capability/need complement scores 1", func() {
				So(metrics[signal.NameBipartite], ShouldEqual, 1)
			})
		})

		Convey("When one side is missing inputs", func() {
			metrics, err := engine.CalculateMetrics(ctx, &corpus[0], &corpus[2])
			So(err, ShouldBeNil)

			Convey("Then those signals are omitted, not defaulted to 0", func() {
				So(metrics, ShouldNotContainKey, signal.NameMarketOverlap)
				So(metrics, ShouldNotContainKey, signal.NameBipartite)
				So(metrics, ShouldNotContainKey, signal.NameDateProximity)
			})
		})

		Convey("When comparing in both orders", func() {
			ab, err := engine.CalculateMetrics(ctx, &corpus[0], &corpus[1])
			So(err, ShouldBeNil)
			ba, err := engine.CalculateMetrics(ctx, &corpus[1], &corpus[0])
			So(err, ShouldBeNil)

			Convey("Then every signal is symmetric", func() {
				So(len(ab), ShouldEqual, len(ba))
				for name, v := range ab {
					So(ba[name], ShouldAlmostEqual, v, 1e-9)
				}
			})
		})

		Convey("When computed twice over the same snapshot", func() {
			first, err := engine.CalculateMetrics(ctx, &corpus[0], &corpus[1])
			So(err, ShouldBeNil)
			second, err := engine.CalculateMetrics(ctx, &corpus[0], &corpus[1])
			So(err, ShouldBeNil)

			Convey("Then results are deterministic", func() {
				So(second, ShouldResemble, first)
			})
		})
	})
}

func TestGenerateReasons(t *testing.T) {
	Convey("Given a metric map", t, func() {
		engine := signal.New()
		So(engine.Initialize(context.Background(), testCorpus()), ShouldBeNil)

		metrics := map[string]float64{
			signal.NameBipartite:       1.0,
			signal.NamePlatformOverlap: 0.5,
			signal.NameMarketOverlap:   0.25,
		}

		Convey("When rendering the top 2 reasons", func() {
			reasons := engine.GenerateReasons(metrics, 2)

			Convey("Then they are ordered by descending value with display names", func() {
				So(len(reasons), ShouldEqual, 2)
				So(reasons[0], ShouldContainSubstring, "Capability/need fit")
				So(reasons[0], ShouldContainSubstring, "100%")
				So(reasons[1], ShouldContainSubstring, "Platform overlap")
			})
		})

		Convey("When asking for more reasons than metrics", func() {
			reasons := engine.GenerateReasons(metrics, 10)
			So(len(reasons), ShouldEqual, 3)
		})

		Convey("When topN is zero", func() {
			So(engine.GenerateReasons(metrics, 0), ShouldBeNil)
		})
	})
}
