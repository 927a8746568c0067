//go:build !opencv

package vision

import "fmt"

func openOpenCV() (Runtime, error) {
	return nil, fmt.Errorf("opencv backend: %w: rebuild with -tags opencv", ErrUnsupported)
}
