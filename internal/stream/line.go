package stream

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	dataPrefix = "data: "
	doneLine   = dataPrefix + "[DONE]"
)

var errNotObject = errors.New("payload is not a JSON object")

// Logger is the sink the line decoder reports skipped lines to.
// *log.Logger from charmbracelet/log satisfies it.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
}

// Kind classifies a single stream line.
type Kind int

const (
	// Noise is a line without the "data: " prefix.
	Noise Kind = iota
	// StreamEnded is the "data: [DONE]" sentinel.
	StreamEnded
	// DecodeError is a data line whose payload is not a valid chunk.
	DecodeError
	// Parsed is a data line that decoded into a chunk.
	Parsed
)

func (k Kind) String() string {
	switch k {
	case Noise:
		return "noise"
	case StreamEnded:
		return "stream-ended"
	case DecodeError:
		return "decode-error"
	case Parsed:
		return "parsed"
	default:
		return "unknown"
	}
}

// Result is the outcome of decoding one line. Chunk is set only for Parsed
// and Err only for DecodeError.
type Result struct {
	Kind  Kind
	Chunk *Chunk
	Err   error
}

// Decode classifies line and, for data lines, decodes the JSON payload.
// It never fails: every outcome is reported through the returned Result and,
// when logger is non-nil, through the logger.
func Decode(line string, logger Logger) Result {
	payload, ok := strings.CutPrefix(line, dataPrefix)
	if !ok {
		warn(logger, "unexpected line", "line", line)
		return Result{Kind: Noise}
	}

	if line == doneLine {
		debug(logger, "stream finished")
		return Result{Kind: StreamEnded}
	}

	var chunk *Chunk
	err := json.Unmarshal([]byte(payload), &chunk)
	if err == nil && chunk == nil {
		err = errNotObject
	}
	if err != nil {
		warn(logger, "unexpected JSON", "line", line, "err", err)
		return Result{Kind: DecodeError, Err: err}
	}

	return Result{Kind: Parsed, Chunk: chunk}
}

// ParseLine decodes one stream line into a chunk. It returns nil for noise
// lines, the [DONE] sentinel and undecodable payloads alike; use Decode to
// tell those apart.
func ParseLine(line string, logger Logger) *Chunk {
	return Decode(line, logger).Chunk
}

func warn(logger Logger, msg string, keyvals ...any) {
	if logger != nil {
		logger.Warn(msg, keyvals...)
	}
}

func debug(logger Logger, msg string, keyvals ...any) {
	if logger != nil {
		logger.Debug(msg, keyvals...)
	}
}
