package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-jobswipe-backend/internal/delivery/http/middleware"
	"go-jobswipe-backend/internal/delivery/http/response"
	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/apperror"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application and swipe routes
func NewApplicationHandler(r *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	swipes := r.Group("/swipes")
	{
		swipes.POST("/job", middleware.RequireRole(domain.RoleSeeker), handler.SwipeJob)
		swipes.POST("/applicant", middleware.RequireRole(domain.RoleCompany), handler.SwipeApplicant)
	}

	// Seeker routes
	candidates := r.Group("/candidates", middleware.RequireRole(domain.RoleSeeker))
	{
		candidates.POST("/jobs/:jobId/apply", handler.ApplyToJob)
		candidates.GET("/applications", handler.GetMyApplications)
		candidates.GET("/applications/views", handler.GetProfileViews)
	}

	// Company routes
	employers := r.Group("/employers", middleware.RequireRole(domain.RoleCompany))
	{
		employers.GET("/jobs/:jobId/applicants", handler.ReviewApplicants)
		employers.POST("/applications/:id/view", handler.MarkViewed)
		employers.PATCH("/applications/:id", handler.Decide)
	}
}

// SwipeJobRequest is a seeker's swipe on a job card
type SwipeJobRequest struct {
	JobID     int64  `json:"job_id" binding:"required,gt=0"`
	Direction string `json:"direction" binding:"required,swipe" example:"RIGHT"`
}

// SwipeApplicantRequest is a company's swipe on an applicant card
type SwipeApplicantRequest struct {
	ApplicationID int64  `json:"application_id" binding:"required,gt=0"`
	Direction     string `json:"direction" binding:"required,swipe" example:"LEFT"`
}

// DecisionRequest is the payload for accepting or rejecting an application
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accept reject" example:"accept"`
}

// SwipeJob godoc
// @Summary      Swipe on a job
// @Description  RIGHT applies to the job, LEFT skips it (Seeker only)
// @Tags         swipes
// @Accept       json
// @Produce      json
// @Param        body  body      SwipeJobRequest  true  "Swipe"
// @Success      200   {object}  response.Response{data=domain.SwipeResult}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /swipes/job [post]
// @Security     BearerAuth
func (h *ApplicationHandler) SwipeJob(c *gin.Context) {
	userID, _ := currentUser(c)

	var req SwipeJobRequest
	if !bindJSON(c, &req) {
		return
	}
	direction, err := domain.ParseSwipeDirection(req.Direction)
	if err != nil {
		c.Error(apperror.BadRequest("Direction must be LEFT or RIGHT"))
		return
	}

	result, err := h.applicationUC.SwipeJob(c.Request.Context(), userID, req.JobID, direction)
	if err != nil {
		c.Error(err)
		return
	}

	code := http.StatusOK
	if result.Applied {
		code = http.StatusCreated
	}
	response.Success(c, code, result.Message, result)
}

// SwipeApplicant godoc
// @Summary      Swipe on an applicant
// @Description  RIGHT accepts the application and creates a match, LEFT rejects it (Company only)
// @Tags         swipes
// @Accept       json
// @Produce      json
// @Param        body  body      SwipeApplicantRequest  true  "Swipe"
// @Success      200   {object}  response.Response{data=domain.DecisionResult}
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /swipes/applicant [post]
// @Security     BearerAuth
func (h *ApplicationHandler) SwipeApplicant(c *gin.Context) {
	userID, _ := currentUser(c)

	var req SwipeApplicantRequest
	if !bindJSON(c, &req) {
		return
	}
	direction, err := domain.ParseSwipeDirection(req.Direction)
	if err != nil {
		c.Error(apperror.BadRequest("Direction must be LEFT or RIGHT"))
		return
	}

	result, err := h.applicationUC.SwipeApplicant(c.Request.Context(), userID, req.ApplicationID, direction)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, decisionMessage(result), result)
}

// ApplyToJob godoc
// @Summary      Apply to a job
// @Description  Submit an application for an active job (Seeker only)
// @Tags         applications
// @Produce      json
// @Param        jobId  path      int  true  "Job ID"
// @Success      201    {object}  response.Response{data=domain.Application}
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /candidates/jobs/{jobId}/apply [post]
// @Security     BearerAuth
func (h *ApplicationHandler) ApplyToJob(c *gin.Context) {
	userID, _ := currentUser(c)

	jobID, ok := pathID(c, "jobId", "job ID")
	if !ok {
		return
	}

	app, err := h.applicationUC.ApplyToJob(c.Request.Context(), userID, jobID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted successfully", app)
}

// GetMyApplications godoc
// @Summary      Get my applications
// @Description  Applications submitted by the current seeker, newest first
// @Tags         applications
// @Produce      json
// @Param        page       query     int  false  "Page (1-based)"
// @Param        page_size  query     int  false  "Page size (max 100)"
// @Success      200  {object}  response.Response{data=domain.Page[domain.Application]}
// @Failure      401  {object}  response.Response
// @Router       /candidates/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetMyApplications(c *gin.Context) {
	userID, _ := currentUser(c)
	page, size := pageParams(c)

	applications, err := h.applicationUC.MyApplications(c.Request.Context(), userID, page, size)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applications retrieved", applications)
}

// GetProfileViews godoc
// @Summary      Who viewed my profile
// @Description  Applications a company has reviewed, most recent first
// @Tags         applications
// @Produce      json
// @Param        page       query     int  false  "Page (1-based)"
// @Param        page_size  query     int  false  "Page size (max 100)"
// @Success      200  {object}  response.Response{data=domain.Page[domain.Application]}
// @Router       /candidates/applications/views [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetProfileViews(c *gin.Context) {
	userID, _ := currentUser(c)
	page, size := pageParams(c)

	views, err := h.applicationUC.ProfileViews(c.Request.Context(), userID, page, size)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile views retrieved", views)
}

// ReviewApplicants godoc
// @Summary      Review applicants for a job
// @Description  Open applications oldest first. Returned PENDING applications become VIEWED (Company only)
// @Tags         applications
// @Produce      json
// @Param        jobId      path      int  true   "Job ID"
// @Param        page       query     int  false  "Page (1-based)"
// @Param        page_size  query     int  false  "Page size (max 100)"
// @Success      200    {object}  response.Response{data=domain.Page[domain.Application]}
// @Failure      403    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /employers/jobs/{jobId}/applicants [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ReviewApplicants(c *gin.Context) {
	userID, _ := currentUser(c)

	jobID, ok := pathID(c, "jobId", "job ID")
	if !ok {
		return
	}
	page, size := pageParams(c)

	applicants, err := h.applicationUC.ReviewApplicants(c.Request.Context(), userID, jobID, page, size)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applicants retrieved", applicants)
}

// MarkViewed godoc
// @Summary      Mark an application viewed
// @Description  PENDING becomes VIEWED; later statuses are left as they are (Company only)
// @Tags         applications
// @Produce      json
// @Param        id  path      int  true  "Application ID"
// @Success      200 {object}  response.Response{data=domain.Application}
// @Failure      403 {object}  response.Response
// @Failure      404 {object}  response.Response
// @Router       /employers/applications/{id}/view [post]
// @Security     BearerAuth
func (h *ApplicationHandler) MarkViewed(c *gin.Context) {
	userID, _ := currentUser(c)

	id, ok := pathID(c, "id", "application ID")
	if !ok {
		return
	}

	app, err := h.applicationUC.MarkViewed(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application viewed", app)
}

// Decide godoc
// @Summary      Accept or reject an application
// @Description  Accepting creates the match and opens a chat room (Company only)
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Application ID"
// @Param        body  body      DecisionRequest  true  "Decision"
// @Success      200   {object}  response.Response{data=domain.DecisionResult}
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /employers/applications/{id} [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) Decide(c *gin.Context) {
	userID, _ := currentUser(c)

	id, ok := pathID(c, "id", "application ID")
	if !ok {
		return
	}

	var req DecisionRequest
	if !bindJSON(c, &req) {
		return
	}
	decision, err := domain.ParseDecision(req.Decision)
	if err != nil {
		c.Error(apperror.BadRequest("Decision must be accept or reject"))
		return
	}

	result, err := h.applicationUC.Decide(c.Request.Context(), userID, id, decision)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, decisionMessage(result), result)
}

func decisionMessage(r *domain.DecisionResult) string {
	if r.IsMatch {
		return "It's a match!"
	}
	return "Application rejected"
}
