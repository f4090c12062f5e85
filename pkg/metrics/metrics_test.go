package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

// value reads a single counter or gauge.
func value(c prometheus.Collector) float64 {
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	var pb dto.Metric
	if err := (<-ch).Write(&pb); err != nil {
		return -1
	}
	if pb.Counter != nil {
		return pb.Counter.GetValue()
	}
	return pb.Gauge.GetValue()
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry and custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithRunBuckets([]float64{100, 1000}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the metrics are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.runsTotal.WithLabelValues("succeeded").Inc()

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_runs_total")
				So(manager.runBuckets, ShouldResemble, []float64{100, 1000})
			})
		})

		Convey("When empty options are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRunBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "swimopt")
				So(manager.subsystem, ShouldEqual, "optimizer")
				So(manager.histogramBuckets, ShouldResemble, DefaultLatencyBuckets)
				So(manager.runBuckets, ShouldResemble, DefaultRunBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording run outcomes", func() {
			before := value(globalManager.runsTotal.WithLabelValues("failed"))
			RecordRun("failed", 12)

			Convey("Then the outcome counter moves", func() {
				So(value(globalManager.runsTotal.WithLabelValues("failed")), ShouldEqual, before+1)
			})
		})

		Convey("When recording run coverage", func() {
			filled := value(globalManager.slotsFilled)
			unfilled := value(globalManager.slotsUnfilled)
			RecordRunResult(5, 2, 1, 3, 4)

			Convey("Then each counter adds its figure", func() {
				So(value(globalManager.slotsFilled), ShouldEqual, filled+5)
				So(value(globalManager.slotsUnfilled), ShouldEqual, unfilled+2)
			})
		})

		Convey("When updating queue and worker gauges", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(100)
			UpdateQueueUtilization(0.07)
			UpdateWorkerCount(4)

			Convey("Then the gauges hold the latest value", func() {
				So(value(globalManager.queueSize), ShouldEqual, 7)
				So(value(globalManager.queueCapacity), ShouldEqual, 100)
				So(value(globalManager.workerCount), ShouldEqual, 4)
			})
		})

		Convey("When adjusting active workers", func() {
			before := value(globalManager.workerActiveCount)
			AddWorkerActive(1)
			AddWorkerActive(-1)

			Convey("Then the gauge returns to its previous value", func() {
				So(value(globalManager.workerActiveCount), ShouldEqual, before)
			})
		})

		Convey("When recording the remaining metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordRequestDuplicate()
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordWorkerProcessingLatency(3)
					RecordWorkerError()
					UpdateStoreRecords(10)
					RecordStoreLatency("memory", "save", 0.1)
					RecordPublish("skipped")
					RecordHTTPRequest("/optimize", "POST", "200")
					RecordHTTPRequestDuration("/optimize", "POST", "200", 4)
					RecordErrorByComponent("engine", "conflict")
					RecordErrorByEndpoint("/optimize", "POST", "validation_error")
				}, ShouldNotPanic)
			})
		})

		Convey("Then the custom registry is exposed", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
