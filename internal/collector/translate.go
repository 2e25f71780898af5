// Package collector wires the Sanitizer and Deduplicator into the network
// edge of the pipeline (spec §4.3): a gRPC ingest server translates wire
// CaptureRecords into domain model.CaptureRecords, runs them through the
// validate → sanitize → fingerprint → dedup → stage pipeline, and a fleet of
// enqueue workers drains the staging channel onto the Queue.
package collector

import (
	"time"

	"github.com/meshcap/sanitizer-pipeline/internal/ingestpb"
	"github.com/meshcap/sanitizer-pipeline/internal/model"
)

// fromWire translates a wire CaptureRecord into the domain type. Nil nested
// messages (Request/Response) decode to zero values, matching proto3's
// "absent message = default instance" semantics.
func fromWire(in *ingestpb.CaptureRecord) model.CaptureRecord {
	if in == nil {
		return model.CaptureRecord{}
	}
	return model.CaptureRecord{
		Direction:    model.Direction(in.GetDirection()),
		Request:      fromWireRequest(in.GetRequest()),
		Response:     fromWireResponse(in.GetResponse()),
		ObservedAt:   time.Unix(0, in.GetObservedAtUnixNano()).UTC(),
		SourceLabels: in.GetSourceLabels(),
	}
}

func fromWireRequest(in *ingestpb.RequestData) model.RequestData {
	if in == nil {
		return model.RequestData{}
	}
	return model.RequestData{
		Method:    in.GetMethod(),
		Path:      in.GetPath(),
		Query:     fromWireHeaderMap(in.GetQuery()),
		Headers:   fromWireHeaderMap(in.GetHeaders()),
		Body:      in.GetBody(),
		Truncated: in.GetTruncated(),
	}
}

func fromWireResponse(in *ingestpb.ResponseData) model.ResponseData {
	if in == nil {
		return model.ResponseData{}
	}
	return model.ResponseData{
		Status:  int(in.GetStatus()),
		Headers: fromWireHeaderMap(in.GetHeaders()),
		Body:    in.GetBody(),
	}
}

func fromWireHeaderMap(in map[string]*ingestpb.StringList) model.HeaderMap {
	if len(in) == 0 {
		return nil
	}
	out := make(model.HeaderMap, len(in))
	for k, v := range in {
		out[k] = v.GetValues()
	}
	return out
}

// toWireAck translates a domain IngestAck into its wire form.
func toWireAck(ack model.IngestAck) *ingestpb.IngestAck {
	return &ingestpb.IngestAck{
		Accepted:      ack.Accepted,
		Duplicate:     ack.Duplicate,
		DroppedReason: ack.DroppedReason,
	}
}
