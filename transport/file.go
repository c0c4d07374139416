package transport

import (
	"os"

	"github.com/mimblenet/slatewire/slate"
)

// File exchange is the degenerate synchronous transport: the slate travels
// out of band and each step reads or writes a file.

func ReadSlateFile(path string) (*slate.Slate, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return slate.Parse(buf)
}

func WriteSlateFile(path string, s *slate.Slate) error {
	buf, err := s.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0600)
}
