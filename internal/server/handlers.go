package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/danmuck/memmap/internal/codec"
	"github.com/danmuck/memmap/internal/elaborate"
	"github.com/danmuck/memmap/internal/memmap"
	"github.com/danmuck/memmap/internal/observability"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleElaborate(c *gin.Context) {
	doc, out, ok := s.readDocument(c)
	if !ok {
		return
	}
	start := time.Now()
	sum, err := elaborate.Walk(&doc.Root, doc.Protocol)
	outcome := elaborate.Outcome(err)
	observability.RecordElaboration("http", outcome, sum.Fields, time.Since(start))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "kind": outcome})
		return
	}
	s.writeDocument(c, out, doc)
}

func (s *Server) handleConvert(c *gin.Context) {
	doc, out, ok := s.readDocument(c)
	if !ok {
		return
	}
	s.writeDocument(c, out, doc)
}

// readDocument decodes the request body. The input format comes from the
// format query, then the Content-Type, then the service default; the output
// format defaults to the input format.
func (s *Server) readDocument(c *gin.Context) (*memmap.Document, codec.Format, bool) {
	in, err := s.requestFormat(c.Query("format"), c.ContentType())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, "", false
	}
	out, err := codec.ParseFormat(c.Query("output"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, "", false
	}
	if out == codec.FormatAuto {
		out = in
	}

	body := c.Request.Body
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, s.cfg.MaxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return nil, "", false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, "", false
	}

	doc, err := codec.Decode(in, data)
	if err != nil {
		resp := gin.H{"error": err.Error(), "kind": "decode"}
		var de *memmap.DecodeError
		if errors.As(err, &de) && de.Path != "" {
			resp["path"] = de.Path
		}
		c.JSON(http.StatusBadRequest, resp)
		return nil, "", false
	}
	return doc, out, true
}

func (s *Server) requestFormat(query, contentType string) (codec.Format, error) {
	f, err := codec.ParseFormat(query)
	if err != nil || f != codec.FormatAuto {
		return f, err
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "application/toml", "text/toml", "text/x-toml":
			return codec.FormatTOML, nil
		case "application/json":
			return codec.FormatJSON, nil
		}
	}
	return s.defaultFormat, nil
}

func (s *Server) writeDocument(c *gin.Context, f codec.Format, doc *memmap.Document) {
	data, err := codec.Marshal(f, doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, f.ContentType(), data)
}
