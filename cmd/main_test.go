package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/urfave/cli/v2"

	"github.com/okian/qehtml/internal/adapters/repository"
	"github.com/okian/qehtml/internal/app"
)

// parse runs the CLI with args and returns the collected overrides.
func parse(args ...string) (map[string]interface{}, error) {
	var got map[string]interface{}
	a := newApp()
	a.Action = func(c *cli.Context) (err error) {
		got, err = overrides(c)
		return err
	}
	err := a.Run(append([]string{"qehtml"}, args...))
	return got, err
}

func TestOverrides(t *testing.T) {
	convey.Convey("Given the command line", t, func() {
		convey.Convey("When only the event is given", func() {
			got, err := parse("spring2024")

			convey.Convey("Then only the event is overridden", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldResemble, map[string]interface{}{"event": "spring2024"})
			})
		})

		convey.Convey("When short aliases are used", func() {
			got, err := parse("-n", "2", "-d", "/srv/www", "-m", "results", "-s", "db.local", "spring")

			convey.Convey("Then they map to the config keys", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got["stage"], convey.ShouldEqual, 2)
				convey.So(got["html_dir"], convey.ShouldEqual, "/srv/www")
				convey.So(got["mode"], convey.ShouldEqual, "results")
				convey.So(got["sql_server"], convey.ShouldEqual, "db.local")
			})
		})

		convey.Convey("When booleans and long names are used", func() {
			got, err := parse("--hours=false", "--xlsx", "--classes-not-like", "Ž%", "--sql-driver", "sqlite", "cup.qbe")

			convey.Convey("Then explicit false values are kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got["hours"], convey.ShouldEqual, false)
				convey.So(got["xlsx"], convey.ShouldEqual, true)
				convey.So(got["classes_not_like"], convey.ShouldEqual, "Ž%")
				convey.So(got["sql_driver"], convey.ShouldEqual, "sqlite")
				convey.So(got["event"], convey.ShouldEqual, "cup.qbe")
			})
		})

		convey.Convey("When flags follow the event", func() {
			got, err := parse("cup.qbe", "--sql-driver", "sqlite", "-n", "2")

			convey.Convey("Then the command line is rejected instead of dropping them", func() {
				convey.So(errors.Is(err, errEventArgs), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "--sql-driver")
				convey.So(got, convey.ShouldBeNil)
			})
		})

		convey.Convey("When no event is given", func() {
			got, err := parse("-n", "2")

			convey.Convey("Then the event is left to the config file or environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldResemble, map[string]interface{}{"stage": 2})
			})
		})

		convey.Convey("When verbosity flags are used", func() {
			verbose, err := parse("-v", "e")
			convey.So(err, convey.ShouldBeNil)
			quiet, err := parse("-q", "e")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then they become log levels", func() {
				convey.So(verbose["log_level"], convey.ShouldEqual, "debug")
				convey.So(quiet["log_level"], convey.ShouldEqual, "warn")
				_, leaked := verbose["verbose"]
				convey.So(leaked, convey.ShouldBeFalse)
			})
		})
	})
}

func TestExitError(t *testing.T) {
	convey.Convey("Given errors returned by a run", t, func() {
		cases := []struct {
			err  error
			want string
		}{
			{fmt.Errorf("%w: dial tcp: refused", repository.ErrConnect), "cannot connect to database"},
			{fmt.Errorf("%w: /srv/www: permission denied", app.ErrOutputDir), "cannot create output directories"},
			{errors.New("query failed"), "query failed"},
		}

		for _, tc := range cases {
			convey.Convey("When mapping "+tc.err.Error(), func() {
				var coder cli.ExitCoder
				convey.So(errors.As(exitError(tc.err), &coder), convey.ShouldBeTrue)

				convey.Convey("Then the exit code is 1 with a readable message", func() {
					convey.So(coder.ExitCode(), convey.ShouldEqual, 1)
					convey.So(coder.Error(), convey.ShouldEqual, tc.err.Error())
					convey.So(strings.Count(coder.Error(), tc.want), convey.ShouldEqual, 1)
				})
			})
		}

		convey.Convey("When there is no error", func() {
			convey.So(exitError(nil), convey.ShouldBeNil)
		})
	})
}
