package collector

import (
	"io"

	"github.com/google/uuid"

	"github.com/meshcap/sanitizer-pipeline/internal/ingestpb"
	"github.com/meshcap/sanitizer-pipeline/internal/logger"
)

// Server adapts a Pipeline to the ingestpb.IngestServiceServer contract: one
// CaptureRecord in, one IngestAck out, per spec §6's "streaming server
// method... produces a one-shot acknowledgement".
type Server struct {
	ingestpb.UnimplementedIngestServiceServer
	pipeline *Pipeline
	log      *logger.Logger
}

// NewServer returns a Server bound to pipeline.
func NewServer(pipeline *Pipeline, log *logger.Logger) *Server {
	return &Server{pipeline: pipeline, log: log}
}

// Ingest reads CaptureRecords from stream until the client closes it or an
// error occurs, running each through the Pipeline and sending back its ack
// in order.
func (s *Server) Ingest(stream ingestpb.IngestService_IngestServer) error {
	ctx := stream.Context()
	streamID := uuid.NewString()
	if s.log != nil {
		s.log.Debugf("ingest", "stream %s opened", streamID)
	}

	var n int
	for {
		in, err := stream.Recv()
		if err == io.EOF {
			if s.log != nil {
				s.log.Debugf("ingest", "stream %s closed after %d records", streamID, n)
			}
			return nil
		}
		if err != nil {
			if s.log != nil {
				s.log.Warnf("ingest", "stream %s recv error after %d records: %v", streamID, n, err)
			}
			return err
		}
		n++

		record := fromWire(in)
		ack := s.pipeline.Process(ctx, record)

		if err := stream.Send(toWireAck(ack)); err != nil {
			return err
		}
	}
}
