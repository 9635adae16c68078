package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/alternatefutures/akash-agent/interfaces"
)

// serviceLogMessage is the structured form of one inbound log message.
type serviceLogMessage struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// logLine is the tagged decode result of one inbound message: either a
// structured service log record or a raw line the provider sent unframed.
type logLine struct {
	structured *serviceLogMessage
	raw        string
}

// parseLogLine attempts the structured decode and falls back to treating the
// whole message as one raw line. The fallback is a first-class variant, not
// an error path: providers interleave both shapes on one stream.
func parseLogLine(data []byte) logLine {
	var msg serviceLogMessage
	if err := json.Unmarshal(data, &msg); err == nil && msg.Name != "" && msg.Message != "" {
		return logLine{structured: &msg}
	}
	return logLine{raw: string(data)}
}

func (l logLine) String() string {
	if l.structured != nil {
		return fmt.Sprintf("[%s] %s", l.structured.Name, l.structured.Message)
	}
	return l.raw
}

// FetchLogs tails the logs of a lease over a duplex stream. service
// optionally filters to one service; tail bounds how many trailing lines the
// provider sends. Output is the newline-joined concatenation of received
// lines in arrival order.
//
// Exactly one of three terminal events commits the result: the provider
// closing the stream, a transport error, or the idle timeout (measured from
// stream open). On timeout whatever has been buffered is returned; partial
// output is expected, not a failure.
func (c *Client) FetchLogs(ctx context.Context, endpoint *url.URL, lease interfaces.LeaseID, service string, tail int) (string, error) {
	path := fmt.Sprintf("/lease/%d/%d/%d/logs?follow=false&tail=%d",
		lease.DSeq, lease.GSeq, lease.OSeq, tail)
	if service != "" {
		path += "&services=" + url.QueryEscape(service)
	}

	conn, err := c.dialStream(ctx, endpoint, path)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	c.log.Debug("Log stream opened",
		slog.Uint64("dseq", lease.DSeq),
		slog.String("provider", lease.Provider.String()))

	var lines []string
	done := make(chan struct{})
	defer close(done)
	events := readStream(conn, done)
	timeout := time.NewTimer(c.LogTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case <-timeout.C:
			if len(lines) > 0 {
				return strings.Join(lines, "\n"), nil
			}
			return "No logs received (timeout)", nil

		case ev := <-events:
			if ev.err == nil {
				lines = append(lines, parseLogLine(ev.data).String())
				continue
			}
			// Recognized close codes describe a provider-side failure and win
			// over any buffered output.
			switch code := closeCode(ev.err); code {
			case closeInternalError:
				return "Error: Internal server error from provider", nil
			case closeLeaseNotFound:
				return "Error: Lease not found", nil
			case 0:
				return "", fmt.Errorf("stream failed: %w", ev.err)
			default:
				if len(lines) > 0 {
					return strings.Join(lines, "\n"), nil
				}
				return fmt.Sprintf("No logs available (connection closed with code %d)", code), nil
			}
		}
	}
}
