package main

import (
	"bytes"
	"io"
)

// payloadWriter concatenates result pages. For tabular formats every page
// repeats the header line; only the first one is written.
type payloadWriter struct {
	w           io.Writer
	dropHeaders bool
	wroteHeader bool
	pages       int
}

func newPayloadWriter(w io.Writer, format string) *payloadWriter {
	return &payloadWriter{
		w:           w,
		dropHeaders: format == "tsv" || format == "",
	}
}

func (p *payloadWriter) WritePage(data []byte) error {
	p.pages++
	if len(data) == 0 {
		return nil
	}
	if p.dropHeaders {
		if p.wroteHeader {
			if i := bytes.IndexByte(data, '\n'); i >= 0 {
				data = data[i+1:]
			} else {
				data = nil
			}
		}
		p.wroteHeader = true
	}
	if len(data) == 0 {
		return nil
	}
	_, err := p.w.Write(data)
	return err
}
