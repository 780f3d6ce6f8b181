// Copyright 2023 Hedgehog
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logutil

import (
	"bytes"
	"io"
)

// Sink logs every complete line written to it, e.g. output of a child process. It's meant to be used by a single
// writer, exec.Cmd uses a separate goroutine per stream so stdout and stderr need separate sinks.
type Sink struct {
	log    func(msg string, args ...any)
	prefix string
	args   []any
	buf    []byte
}

var _ io.WriteCloser = &Sink{}

func NewSink(log func(msg string, args ...any), msgPrefix string, args ...any) *Sink {
	return &Sink{
		log:    log,
		prefix: msgPrefix,
		args:   args,
	}
}

func (s *Sink) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)

	for {
		idx := bytes.IndexByte(s.buf, '\n')
		if idx < 0 {
			break
		}

		s.emit(s.buf[:idx])
		s.buf = s.buf[idx+1:]
	}

	return len(p), nil
}

// Close flushes the last line if it wasn't terminated by a newline
func (s *Sink) Close() error {
	if len(s.buf) > 0 {
		s.emit(s.buf)
		s.buf = nil
	}

	return nil
}

func (s *Sink) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(line) == 0 {
		return
	}

	s.log(s.prefix+string(line), s.args...)
}
