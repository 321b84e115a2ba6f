package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/domain/intake"
	"safetyops/internal/domain/safety"
	"safetyops/internal/errs"
)

// ParseRequest is what the caller hands to the parse worker. It is copied
// on send.
type ParseRequest struct {
	Data  []byte
	Rules []safety.MappingRule
	Sheet string
}

// ParseMessage is the single reply of a parse: ParseSucceeded or ParseFailed.
type ParseMessage interface {
	isParseMessage()
}

type ParseSucceeded struct {
	Sheet     string
	Incidents []safety.Incident
	Rules     []safety.MappingRule
	Warnings  []string
}

type ParseFailed struct {
	Err     error
	Message string
}

func (ParseSucceeded) isParseMessage() {}
func (ParseFailed) isParseMessage()    {}

// StartParse runs the workbook parse off the caller's goroutine. The
// returned channel yields exactly one message and is then closed. The parse
// is not cancellable: ctx only carries logging values.
func (s *Service) StartParse(ctx context.Context, req ParseRequest) <-chan ParseMessage {
	out := make(chan ParseMessage, 1)
	req = ParseRequest{
		Data:  bytes.Clone(req.Data),
		Rules: append([]safety.MappingRule(nil), req.Rules...),
		Sheet: req.Sheet,
	}
	workCtx := context.WithoutCancel(logging.WithComponent(ctx, "usecase.ingest.parse"))

	go func() {
		defer close(out)
		out <- s.parse(workCtx, req)
	}()
	return out
}

func (s *Service) parse(ctx context.Context, req ParseRequest) (msg ParseMessage) {
	defer func() {
		if r := recover(); r != nil {
			err := errs.WithStack(fmt.Errorf("parse panic: %v", r))
			logging.Error(ctx, "parse worker panicked", slog.Any("err", errs.Loggable(err)))
			msg = ParseFailed{Err: err, Message: err.Error()}
		}
	}()

	if s.reader == nil {
		err := errors.New("workbook reader is required")
		return ParseFailed{Err: err, Message: err.Error()}
	}

	sheet, err := s.reader.ReadSheet(ctx, req.Data, req.Sheet)
	if err != nil {
		return ParseFailed{Err: err, Message: err.Error()}
	}
	res, err := intake.Build(sheet, req.Rules)
	if err != nil {
		return ParseFailed{Err: err, Message: err.Error()}
	}

	logging.Debug(ctx, "workbook parsed",
		slog.String("sheet", sheet.Name),
		slog.Int("incidents", len(res.Incidents)),
		slog.Int("warnings", len(res.Warnings)),
	)
	return ParseSucceeded{
		Sheet:     sheet.Name,
		Incidents: res.Incidents,
		Rules:     res.Rules,
		Warnings:  res.Warnings,
	}
}
