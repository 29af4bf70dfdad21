package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/export"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

const (
	exportChunk   = 100
	exportMaxRows = 10000
)

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"requestId"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type bookingRequest struct {
	ItemID int64     `json:"itemId"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

type itemRequestBody struct {
	Description string `json:"description"`
}

// actorAndPage parses the two inputs most listings need.
func actorAndPage(r *http.Request) (int64, models.Page, error) {
	actor, err := ActorID(r)
	if err != nil {
		return 0, models.Page{}, err
	}
	page, err := ParsePage(r.URL.Query())
	return actor, page, err
}

// Users

func (s *HTTPServer) createUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := decodeJSON(r, &user); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	user.ID = 0

	created, err := s.svc.Users.CreateUser(r.Context(), &user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, created)
}

func (s *HTTPServer) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

func (s *HTTPServer) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "userId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := s.svc.Users.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "userId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var patch models.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := s.svc.Users.UpdateUser(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "userId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.Users.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Items

func (s *HTTPServer) createItem(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body createItemRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Available == nil {
		WriteError(w, http.StatusBadRequest, "available is required")
		return
	}

	item, err := s.svc.Items.CreateItem(r.Context(), actor, &models.Item{
		Name:        body.Name,
		Description: body.Description,
		Available:   *body.Available,
		RequestID:   body.RequestID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) updateItem(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	itemID, err := PathID(r, "itemId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var patch models.ItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := s.svc.Items.UpdateItem(r.Context(), actor, itemID, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) getItem(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	itemID, err := PathID(r, "itemId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.svc.Items.GetItem(r.Context(), actor, itemID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) getOwnerItems(w http.ResponseWriter, r *http.Request) {
	actor, page, err := actorAndPage(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	views, err := s.svc.Items.GetOwnerItems(r.Context(), actor, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, views)
}

func (s *HTTPServer) searchItems(w http.ResponseWriter, r *http.Request) {
	actor, page, err := actorAndPage(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.svc.Items.SearchItems(r.Context(), actor, r.URL.Query().Get("text"), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) createComment(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	itemID, err := PathID(r, "itemId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body commentRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := s.svc.Items.CreateComment(r.Context(), actor, itemID, body.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, comment)
}

// Bookings

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body bookingRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.svc.Bookings.CreateBooking(r.Context(), actor, body.ItemID, body.Start, body.End)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) updateBookingStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := PathID(r, "bookingId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}

	view, err := s.svc.Bookings.UpdateBookingStatus(r.Context(), actor, bookingID, approved)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) getBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := PathID(r, "bookingId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.svc.Bookings.GetBooking(r.Context(), actor, bookingID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// Unknown state tokens reach the service as StateUnknown and yield an empty list.
func (s *HTTPServer) getBookingsForUser(w http.ResponseWriter, r *http.Request) {
	actor, page, err := actorAndPage(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	state := models.StateOf(r.URL.Query().Get("state"))

	views, err := s.svc.Bookings.GetBookingsForUser(r.Context(), actor, state, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, views)
}

func (s *HTTPServer) getBookingsForOwner(w http.ResponseWriter, r *http.Request) {
	actor, page, err := actorAndPage(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	state := models.StateOf(r.URL.Query().Get("state"))

	views, err := s.svc.Bookings.GetBookingsForItemOwner(r.Context(), actor, state, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, views)
}

// exportOwnerBookings streams every owner booking matching state as XLSX.
func (s *HTTPServer) exportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	state := models.StateOf(r.URL.Query().Get("state"))

	var all []*models.BookingView
	for page := (models.Page{Size: exportChunk}); page.From < exportMaxRows; page.From += exportChunk {
		chunk, err := s.svc.Bookings.GetBookingsForItemOwner(r.Context(), actor, state, page)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		all = append(all, chunk...)
		if len(chunk) < exportChunk {
			break
		}
	}

	now := s.now()
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="bookings_%d_%s.xlsx"`, actor, now.UTC().Format("2006-01-02")))
	if err := export.WriteOwnerBookings(w, all, now); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int64("owner_id", actor).Msg("Failed to export bookings")
	}
}

// Requests

func (s *HTTPServer) createRequest(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body itemRequestBody
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.svc.Requests.CreateRequest(r.Context(), actor, body.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) getOwnRequests(w http.ResponseWriter, r *http.Request) {
	actor, page, err := actorAndPage(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	views, err := s.svc.Requests.GetOwnRequests(r.Context(), actor, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, views)
}

func (s *HTTPServer) getOtherRequests(w http.ResponseWriter, r *http.Request) {
	actor, page, err := actorAndPage(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	views, err := s.svc.Requests.GetOtherRequests(r.Context(), actor, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, views)
}

func (s *HTTPServer) getRequest(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	requestID, err := PathID(r, "requestId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.svc.Requests.GetRequest(r.Context(), actor, requestID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}
