package bundle

import (
	"github.com/go-unity/ubundle/internal/byteio"
)

// Header is the fixed leading portion of a bundle file: a signature
// identifying its dialect, a format version, and the engine build that
// produced it. Size is filled in by whichever path (§ new-style or legacy)
// reads the size field, since its width and position differ between them.
type Header struct {
	Signature      string
	Version        uint32
	EngineVersion  string
	EngineRevision string
	Size           int64
}

func readHeader(r *byteio.Reader) (Header, error) {
	var h Header
	var err error

	if h.Signature, err = r.CString(); err != nil {
		return Header{}, err
	}
	if h.Version, err = r.U32(); err != nil {
		return Header{}, err
	}
	if h.EngineVersion, err = r.CString(); err != nil {
		return Header{}, err
	}
	if h.EngineRevision, err = r.CString(); err != nil {
		return Header{}, err
	}

	return h, nil
}
