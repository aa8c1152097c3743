package logger_test

import (
	"context"
	"testing"

	"github.com/okian/pushlog/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	convey.Convey("Given an initialized logger", t, func() {
		err := logger.Init()
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When getting the global logger", func() {
			l := logger.Get()

			convey.Convey("Then it should not be nil", func() {
				convey.So(l, convey.ShouldNotBeNil)
			})

			convey.Convey("And logging should not panic", func() {
				ctx := context.Background()
				convey.So(func() {
					l.Info(ctx, "info message", logger.String("key", "value"))
					l.Warn(ctx, "warn message", logger.Int("count", 3))
					l.Debug(ctx, "debug message")
					l.Error(ctx, "error message", logger.Error(nil))
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When creating a named logger", func() {
			l := logger.Named("store")

			convey.Convey("Then it should not be nil", func() {
				convey.So(l, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When setting levels from strings", func() {
			convey.So(logger.SetLevelString("debug"), convey.ShouldBeNil)
			convey.So(logger.SetLevelString("warn"), convey.ShouldBeNil)
			convey.So(logger.SetLevelString("warning"), convey.ShouldBeNil)
			convey.So(logger.SetLevelString("ERROR"), convey.ShouldBeNil)
			convey.So(logger.SetLevelString(""), convey.ShouldBeNil)

			convey.Convey("Then an unknown level should fail", func() {
				convey.So(logger.SetLevelString("loud"), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When syncing", func() {
			convey.So(logger.Sync(), convey.ShouldBeNil)
		})
	})
}
