package handlers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Log reads the requested tasks' log files, optionally tailing only the
// last N lines. A missing log file for one task produces a per-id
// failure without aborting the rest of the batch.
func (d *Dispatcher) Log(req *LogRequest) Reply {
	ids := req.TaskIDs
	if len(ids) == 0 {
		for _, t := range d.Store.Tasks() {
			ids = append(ids, t.ID)
		}
	}

	var entries []LogEntry
	failures := make(map[int64]string)

	for _, id := range ids {
		data, err := d.readLog(id, req.Lines)
		if err != nil {
			failures[id] = err.Error()
			continue
		}
		entries = append(entries, LogEntry{TaskID: id, Data: data})
	}

	reply := Reply{Kind: LogLines, Logs: entries}
	if len(failures) > 0 {
		reply.Failures = failures
	}
	return reply
}

func (d *Dispatcher) readLog(id int64, tailLines int) ([]byte, error) {
	path := filepath.Join(d.LogDir, fmt.Sprintf("%d.log", id))
	if tailLines <= 0 {
		return os.ReadFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > tailLines {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, err
	}

	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return []byte(out), nil
}

// StreamLog opens the task's log file and returns a channel of chunks
// read from it as they are written, polling for new data the way `tail
// -f` would. The socket layer owns the channel's lifetime: it stops
// reading once the client disconnects, at which point the caller should
// close done to stop the underlying goroutine.
func (d *Dispatcher) StreamLog(req *StreamLogRequest, done <-chan struct{}) (<-chan []byte, error) {
	path := filepath.Join(d.LogDir, fmt.Sprintf("%d.log", req.TaskID))
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	out := make(chan []byte, 16)
	go func() {
		defer f.Close()
		defer close(out)

		buf := make([]byte, 32*1024)
		for {
			select {
			case <-done:
				return
			default:
			}

			n, err := f.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case out <- chunk:
				case <-done:
					return
				}
			}
			if err == io.EOF {
				select {
				case <-done:
					return
				case <-time.After(500 * time.Millisecond):
				}
				continue
			}
			if err != nil {
				return
			}
		}
	}()

	return out, nil
}
