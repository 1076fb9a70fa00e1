package interfaces

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListJobs(c *gin.Context) {
	jobs, err := h.Jobs.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *HTTPHandler) GetJob(c *gin.Context) {
	job, err := h.Jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// CreateJob ignores any owner in the body; the owner is the bearer.
func (h *HTTPHandler) CreateJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	session, _ := sessionFrom(c)

	job, err := h.Jobs.Create(c.Request.Context(), session, req.fields())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *HTTPHandler) UpdateJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	session, _ := sessionFrom(c)

	job, err := h.Jobs.Update(c.Request.Context(), session, c.Param("id"), req.fields(), req.ownerClaim())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *HTTPHandler) DeleteJob(c *gin.Context) {
	session, _ := sessionFrom(c)
	if err := h.Jobs.Delete(c.Request.Context(), session, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
