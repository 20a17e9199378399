package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"event-marketplace-server/middleware"
	"event-marketplace-server/models"
	"event-marketplace-server/services"
)

// RegisterProposalRoutes registers the quote request / proposal
// negotiation endpoints.
func RegisterProposalRoutes(router *gin.RouterGroup, negotiation *services.NegotiationService, dispatcher services.Dispatcher) {
	requests := router.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.POST("", sendRequest(negotiation, dispatcher))
		requests.GET("", listRequests(negotiation))
		requests.GET("/:id", getRequest(negotiation))
		requests.POST("/:id/decline", declineRequest(negotiation))
		requests.POST("/:id/proposal", createProposal(negotiation, dispatcher))
	}

	proposals := router.Group("/proposals")
	proposals.Use(middleware.AuthMiddleware())
	{
		proposals.GET("/:id", getProposal(negotiation))
		proposals.POST("/:id/accept", decideProposal(negotiation, dispatcher, true))
		proposals.POST("/:id/reject", decideProposal(negotiation, dispatcher, false))
	}
}

// sendRequestBody wraps the payload with the target vendor.
type sendRequestBody struct {
	VendorID uint `json:"vendor_id" binding:"required"`
	models.SendRequestPayload
}

func sendRequest(negotiation *services.NegotiationService, dispatcher services.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var body sendRequestBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		request, events, err := negotiation.SendRequest(user, body.VendorID, &body.SendRequestPayload)
		if err != nil {
			respondError(c, err)
			return
		}
		dispatcher.Dispatch(events...)

		c.JSON(http.StatusCreated, gin.H{
			"message": "Quote request sent successfully",
			"request": request,
		})
	}
}

func listRequests(negotiation *services.NegotiationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var requests []models.ProposalRequest
		var err error
		if user.IsProvider() {
			requests, err = negotiation.ListRequestsForVendor(user.ID)
		} else {
			requests, err = negotiation.ListRequestsForClient(user.ID)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"requests": requests})
	}
}

func getRequest(negotiation *services.NegotiationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		request, err := negotiation.GetRequestForUser(user, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request": request})
	}
}

func declineRequest(negotiation *services.NegotiationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		request, err := negotiation.DeclineRequest(user, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Request declined",
			"request": request,
		})
	}
}

// createProposal accepts multipart (proposal fields + optional
// attachment) or plain JSON.
func createProposal(negotiation *services.NegotiationService, dispatcher services.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var payload models.ProposalPayload
		var attachment *services.ProposalAttachment

		if fileHeader, err := c.FormFile("attachment"); err == nil {
			if err := bindProposalForm(c, &payload); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Invalid request data",
					"message": err.Error(),
				})
				return
			}
			head, file, err := openUpload(fileHeader)
			if err != nil {
				respondError(c, err)
				return
			}
			defer file.Close()
			attachment = &services.ProposalAttachment{
				Filename: fileHeader.Filename,
				Size:     fileHeader.Size,
				Head:     head,
				Content:  file,
			}
		} else if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		proposal, events, err := negotiation.CreateProposal(c.Request.Context(), user, id, &payload, attachment)
		if err != nil {
			respondError(c, err)
			return
		}
		dispatcher.Dispatch(events...)

		c.JSON(http.StatusCreated, gin.H{
			"message":  "Proposal sent successfully",
			"proposal": proposal,
		})
	}
}

func getProposal(negotiation *services.NegotiationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		proposal, err := negotiation.GetProposalForUser(user, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"proposal": proposal})
	}
}

func decideProposal(negotiation *services.NegotiationService, dispatcher services.Dispatcher, accept bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var proposal *models.Proposal
		var events []services.Event
		var err error
		if accept {
			proposal, events, err = negotiation.AcceptProposal(user, id)
		} else {
			proposal, events, err = negotiation.RejectProposal(user, id)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		dispatcher.Dispatch(events...)

		c.JSON(http.StatusOK, gin.H{
			"message":  "Proposal " + string(proposal.Status),
			"proposal": proposal,
		})
	}
}

// bindProposalForm reads proposal fields from multipart form values.
func bindProposalForm(c *gin.Context, payload *models.ProposalPayload) error {
	payload.Title = c.PostForm("title")
	payload.Message = c.PostForm("message")
	payload.Description = c.PostForm("description")
	payload.TermsAndConditions = c.PostForm("terms_and_conditions")

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		return err
	}
	payload.Price = price

	if raw := c.PostForm("deposit_required"); raw != "" {
		deposit, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		payload.DepositRequired = &deposit
	}
	if raw := c.PostForm("validity_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		payload.ValidityDays = days
	}
	return binding.Validator.ValidateStruct(payload)
}
