// Package rawfile implements a sink that appends raw frame bytes to a file
// without any container or encoding.
package rawfile

import (
	"os"
)

type Sink struct {
	file *os.File
}

func NewSink(path string) (*Sink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Sink{file: file}, nil
}

func (s *Sink) WriteFrame(frame []byte) error {
	_, err := s.file.Write(frame)
	return err
}

func (s *Sink) Close() error {
	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
