package qsearch

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestConfig(t *testing.T) {
	Convey("Given the default config", t, func() {
		config := NewConfig()

		Convey("The simulator should tolerate dirty releases", func() {
			So(config.Simulator.TolerateNonZeroRelease, ShouldBeTrue)
			So(config.Width, ShouldBeLessThanOrEqualTo, config.Simulator.MaxQubits)
		})

		Convey("The derived retry policy should be unbounded", func() {
			policy := config.RetryPolicy()
			So(policy.MaxAttempts, ShouldEqual, 0)
			So(policy.Timeout, ShouldEqual, time.Duration(0))
			So(policy.Strategy, ShouldBeNil)
		})
	})

	Convey("Given a viper instance", t, func() {
		v := viper.New()
		SetDefaults(v)

		Convey("Defaults alone should reproduce NewConfig", func() {
			So(LoadConfig(v), ShouldResemble, NewConfig())
		})

		Convey("Overrides should flow into the config", func() {
			v.Set("simulator.tolerate_nonzero_release", false)
			v.Set("width", 5)
			v.Set("max_attempts", 12)
			v.Set("timeout", "2s")
			v.Set("backoff", "10ms")

			config := LoadConfig(v)
			So(config.Simulator.TolerateNonZeroRelease, ShouldBeFalse)
			So(config.Width, ShouldEqual, 5)

			policy := config.RetryPolicy()
			So(policy.MaxAttempts, ShouldEqual, 12)
			So(policy.Timeout, ShouldEqual, 2*time.Second)
			So(policy.Strategy.NextDelay(1), ShouldEqual, 10*time.Millisecond)
		})
	})
}
