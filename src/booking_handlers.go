package main

import (
	"net/http"

	"tourbook/src/common"
	"tourbook/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func actorFrom(ctx *gin.Context) types.Actor {
	return types.Actor{
		ID:   ctx.GetUint("id"),
		Role: types.Role(ctx.GetString("role")),
	}
}

func statusForError(err error) int {
	switch common.KindOf(err) {
	case common.KindUnauthenticated:
		return http.StatusUnauthorized
	case common.KindPermissionDenied:
		return http.StatusForbidden
	case common.KindInvalidTransition:
		return http.StatusConflict
	case common.KindInvalidArgument:
		return http.StatusBadRequest
	case common.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}

func errorBody(err error) gin.H {
	if e, ok := err.(*common.Error); ok {
		return gin.H{"error": e.Message}
	}
	return gin.H{"error": err.Error()}
}

func bookingHandlers(g *gin.RouterGroup, sessions *common.SessionRegistry) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			store := sessions.Get(actorFrom(ctx))
			booking, err := store.Create(ctx.Request.Context(), body)
			if err != nil {
				ctx.JSON(statusForError(err), errorBody(err))
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			store := sessions.Get(actorFrom(ctx))
			incoming := store.Incoming()
			outgoing := store.Outgoing()
			if len(incoming) == 0 && len(outgoing) == 0 {
				if err := store.Refresh(ctx.Request.Context()); err != nil {
					ctx.JSON(statusForError(err), errorBody(err))
					return
				}
				incoming = store.Incoming()
				outgoing = store.Outgoing()
			}
			ctx.JSON(http.StatusOK, gin.H{
				"incoming": incoming,
				"outgoing": outgoing,
				"count":    len(incoming) + len(outgoing),
			})
		}).
		POST("/bookings/refresh", func(ctx *gin.Context) {
			store := sessions.Get(actorFrom(ctx))
			if err := store.Refresh(ctx.Request.Context()); err != nil {
				ctx.JSON(statusForError(err), errorBody(err))
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		PUT("/bookings/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateBookingStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			id, err := uuid.Parse(params.ID)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			store := sessions.Get(actorFrom(ctx))
			ok, err := store.UpdateStatus(ctx.Request.Context(), id, body.Status)
			if err != nil {
				ctx.JSON(statusForError(err), errorBody(err))
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"updated": ok, "status": body.Status}})
		}).
		GET("/bookings/reviewable", func(ctx *gin.Context) {
			var filters types.ReviewableQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			store := sessions.Get(actorFrom(ctx))
			eligible := false
			switch {
			case filters.Tour != 0:
				eligible = store.HasCompletedTour(ctx.Request.Context(), filters.Tour)
			case filters.Guide != 0:
				eligible = store.HasCompletedGuideBooking(ctx.Request.Context(), filters.Guide)
			}
			ctx.JSON(http.StatusOK, gin.H{"eligible": eligible})
		})
	return g
}
