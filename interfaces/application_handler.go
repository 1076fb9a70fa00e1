package interfaces

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobselect/domain"
)

// SubmitApplication accepts the multipart application form with its resume.
// A missing resume is left to intake validation so rule order is preserved.
func (h *HTTPHandler) SubmitApplication(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes)

	var form applicationForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("upload exceeds %d bytes", h.cfg.MaxUploadBytes),
				Code:  domain.KindValidationFailed,
				Field: "resume",
			})
			return
		}
		writeError(c, bindError(err))
		return
	}

	doc, err := readDocument(c, "resume")
	if err != nil {
		writeError(c, err)
		return
	}

	session, _ := sessionFrom(c)
	app, err := h.Intake.Submit(c.Request.Context(), session, form.JobID, form.toDomain(), doc)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func readDocument(c *gin.Context, field string) (domain.Document, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return domain.Document{}, nil
		}
		return domain.Document{}, domain.NewError(domain.KindValidationFailed, "read upload", err)
	}

	f, err := header.Open()
	if err != nil {
		return domain.Document{}, domain.Internal("open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Document{}, domain.Internal("read upload", err)
	}
	return domain.Document{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// ListApplications returns a job's applications to its owner.
func (h *HTTPHandler) ListApplications(c *gin.Context) {
	session, _ := sessionFrom(c)
	apps, err := h.Intake.ListForJob(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}
