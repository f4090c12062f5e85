package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const roster = `First_Name,Last_Name,ASA_No,Date_of_Birth,Event,Time,Course,Gender
Amy,Fish,1,01/06/2015,50m Freestyle,35.00,SC,F
Beth,Eel,2,01/06/2015,50m Freestyle,36.00,SC,F
`

const standards = `Event,Time,Age Category,Course,Time Type,Gender
50m Freestyle,35.50,11,SC,QT,Female
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	rosterPath := writeFile(t, dir, "roster.csv", roster)
	standardsPath := writeFile(t, dir, "standards.csv", standards)
	eventsPath := writeFile(t, dir, "events.json", `[["50m Freestyle", 11, "F"]]`)
	configPath := writeFile(t, dir, "config.json", `{"competitionType": "custom", "referenceDate": "2025-12-31"}`)

	Convey("Given local input files", t, func() {
		args := []string{"-roster", rosterPath, "-standards", standardsPath, "-events", eventsPath, "-config", configPath}
		var stdout, stderr bytes.Buffer

		Convey("When the result goes to stdout", func() {
			err := run(context.Background(), args, &stdout, &stderr)
			So(err, ShouldBeNil)

			var doc map[string]interface{}
			So(json.Unmarshal(stdout.Bytes(), &doc), ShouldBeNil)

			Convey("Then the fastest swimmer fills the slot with a qualifying time", func() {
				rows := doc["individual"].([]interface{})
				So(len(rows), ShouldEqual, 1)
				row := rows[0].(map[string]interface{})
				So(row["swimmer"], ShouldEqual, "Amy Fish")
				So(row["status"], ShouldEqual, "QT")
				So(doc["referenceDate"], ShouldEqual, "2025-12-31")
			})
		})

		Convey("When an output file is given", func() {
			out := filepath.Join(dir, "result.json")
			err := run(context.Background(), append(args, "-out", out), &stdout, &stderr)
			So(err, ShouldBeNil)

			Convey("Then stdout stays empty and the file holds the result", func() {
				So(stdout.Len(), ShouldEqual, 0)
				b, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"filledSlots": 1`)
			})
		})

		Convey("When a pin names an unknown swimmer", func() {
			pins := writeFile(t, dir, "pins.json", `{"individual": [{"event": "50m Freestyle", "ageCategory": 11, "gender": "F", "swimmerId": 999}]}`)
			err := run(context.Background(), append(args, "-pins", pins), &stdout, &stderr)

			Convey("Then the run fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "999")
			})
		})
	})

	Convey("Given no roster flag", t, func() {
		var stdout, stderr bytes.Buffer
		err := run(context.Background(), nil, &stdout, &stderr)

		Convey("Then usage is reported", func() {
			So(errors.Is(err, errUsage), ShouldBeTrue)
			So(stderr.String(), ShouldContainSubstring, "-roster is required")
		})
	})

	Convey("Given a missing roster file", t, func() {
		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{"-roster", filepath.Join(dir, "nope.csv")}, &stdout, &stderr)

		Convey("Then the open error is returned", func() {
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})
	})
}
