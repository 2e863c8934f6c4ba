package report

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/pterm/pterm"

	"promptburner/sora"
)

// Rows lays out the run summary: a header, one row per item and a total.
func Rows(results []sora.ItemResult) pterm.TableData {
	rows := make(pterm.TableData, len(results)+2) // +2 for the header and total row
	rows[0] = []string{"Item", "Submission", "Images", "Elapsed", "Status"}

	ok := 0
	var elapsed time.Duration
	for i, res := range results {
		status := "ok"
		if res.OK() {
			ok++
		} else {
			status = "failed"
			if res.Err != nil {
				status = res.Err.Error()
			}
		}
		elapsed += res.Elapsed
		rows[i+1] = []string{
			res.Item.Name,
			res.Outcome.String(),
			fmt.Sprintf("%d", res.Completion.Images),
			res.Elapsed.Round(time.Second).String(),
			status,
		}
	}

	rows[len(results)+1] = []string{"Total", "", "", elapsed.Round(time.Second).String(), fmt.Sprintf("%d/%d ok", ok, len(results))}
	return rows
}

// RenderTable prints the run summary.
func RenderTable(results []sora.ItemResult) error {
	return pterm.DefaultTable.WithHasHeader(true).WithData(Rows(results)).Render()
}

// Point converts an item result into an InfluxDB point.
func Point(res sora.ItemResult) *write.Point {
	p := influxdb2.NewPointWithMeasurement("generation").
		AddTag("item", res.Item.Name).
		AddTag("outcome", res.Outcome.String()).
		AddField("images", res.Completion.Images).
		AddField("elapsed_seconds", res.Elapsed.Seconds()).
		AddField("ok", res.OK()).
		SetTime(res.Started)
	if res.Err != nil {
		p.AddField("error", res.Err.Error())
	}
	return p
}

// Influx writes one point per item to a bucket.
type Influx struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
	log    *pterm.Logger
}

func NewInflux(url, token, org, bucket string, log *pterm.Logger) *Influx {
	client := influxdb2.NewClient(url, token)
	return &Influx{client: client, write: client.WriteAPIBlocking(org, bucket), log: log}
}

// Record writes res. Write failures are logged, not returned.
func (i *Influx) Record(ctx context.Context, res sora.ItemResult) {
	if err := i.write.WritePoint(ctx, Point(res)); err != nil {
		i.log.Warn("error writing point to InfluxDB", i.log.Args("item", res.Item.Name, "error", err))
	}
}

func (i *Influx) Close() {
	i.client.Close()
}
