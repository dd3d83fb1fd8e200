package stream

import (
	"bufio"
	"fmt"
	"io"
)

// Process reads body line by line and publishes an event for every decoded
// chunk. It stops at the [DONE] sentinel, on a read error, or when the
// parser's context is cancelled, and always closes the events channel.
func (p *Parser) Process(body io.Reader) {
	defer close(p.events)
	done := p.ctx.Done()

	reader := bufio.NewReaderSize(body, 4096)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanLines)

	for {
		select {
		case <-done:
			p.send(Event{Error: p.ctx.Err()})
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					p.send(Event{Error: fmt.Errorf("error reading response stream: %w", err)})
				}
				return
			}

			line := scanner.Text()
			// blank lines separate SSE events
			if line == "" {
				continue
			}

			result := Decode(line, p.logger)
			switch result.Kind {
			case Parsed:
				if !p.send(Event{Chunk: result.Chunk}) {
					return
				}
			case StreamEnded:
				p.send(Event{Done: true})
				return
			}
		}
	}
}

// send delivers ev unless the context is cancelled first.
func (p *Parser) send(ev Event) bool {
	select {
	case p.events <- ev:
		return true
	case <-p.ctx.Done():
		return false
	}
}
