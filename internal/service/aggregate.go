package service

import "shareit/internal/models"

// AssembleItemView enriches item for viewerID. Comments are always present;
// last and next bookings are shown to the owner only.
func AssembleItemView(
	viewerID int64,
	item *models.Item,
	comments []*models.Comment,
	last, next *models.Booking,
) *models.ItemView {
	view := &models.ItemView{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		RequestID:   item.RequestID,
		Comments:    make([]models.CommentView, 0, len(comments)),
	}
	for _, c := range comments {
		view.Comments = append(view.Comments, models.CommentViewOf(c))
	}
	if viewerID == item.OwnerID {
		view.LastBooking = models.ShortOf(last)
		view.NextBooking = models.ShortOf(next)
	}
	return view
}

// AssembleRequestView attaches the items answering each request, keeping the
// order of requests.
func AssembleRequestView(requests []*models.ItemRequest, items []*models.Item) []*models.RequestView {
	byRequest := make(map[int64][]models.ItemForRequest, len(requests))
	for _, it := range items {
		if it.RequestID == nil {
			continue
		}
		byRequest[*it.RequestID] = append(byRequest[*it.RequestID], models.ItemForRequest{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Available:   it.Available,
			RequestID:   *it.RequestID,
			OwnerID:     it.OwnerID,
		})
	}

	views := make([]*models.RequestView, 0, len(requests))
	for _, r := range requests {
		attached := byRequest[r.ID]
		if attached == nil {
			attached = []models.ItemForRequest{}
		}
		views = append(views, &models.RequestView{
			ID:          r.ID,
			Description: r.Description,
			Created:     r.Created,
			Items:       attached,
		})
	}
	return views
}

func requestIDs(requests []*models.ItemRequest) []int64 {
	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}
	return ids
}

func itemIDs(items []*models.Item) []int64 {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
