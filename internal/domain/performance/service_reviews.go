package performance

import (
	"context"
	"fmt"
	"strings"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/notifications"
)

func (s *Service) ListReviewCategories(ctx context.Context, orgID string, activeOnly bool) ([]ReviewCategory, error) {
	return s.store.ListReviewCategories(ctx, orgID, activeOnly)
}

func (s *Service) CreateReviewCategory(ctx context.Context, orgID string, c ReviewCategory) (ReviewCategory, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ReviewCategory{}, ErrTitleRequired
	}
	if c.Weight < 0 {
		return ReviewCategory{}, ErrInvalidWeight
	}
	return s.store.CreateReviewCategory(ctx, orgID, c)
}

// CreateReview opens a Draft review. The creating employee becomes the
// reviewer; admins without an employee profile leave it empty.
func (s *Service) CreateReview(ctx context.Context, session auth.Session, in NewReview) (Review, error) {
	if in.ReviewType == "" {
		in.ReviewType = ReviewTypeAnnual
	}
	if !ValidReviewType(in.ReviewType) {
		return Review{}, ErrInvalidReviewType
	}
	if in.PeriodStart != nil && in.PeriodEnd != nil && in.PeriodEnd.Before(in.PeriodStart.Time) {
		return Review{}, ErrInvalidPeriod
	}
	if in.EmployeeID == "" {
		return Review{}, ErrEmployeeProfileMissing
	}
	if err := s.ensureCanManage(ctx, session, in.EmployeeID); err != nil {
		return Review{}, err
	}
	if _, err := s.store.EmployeeDepartment(ctx, session.OrganizationID, in.EmployeeID); err != nil {
		return Review{}, err
	}

	var reviewer *string
	if session.EmployeeID != "" {
		id := session.EmployeeID
		reviewer = &id
	}
	id, err := s.store.CreateReview(ctx, session.OrganizationID, reviewer, in)
	if err != nil {
		return Review{}, fmt.Errorf("create review: %w", err)
	}
	return s.store.GetReview(ctx, session.OrganizationID, id)
}

func (s *Service) ListReviews(ctx context.Context, session auth.Session, filter ReviewFilter) ([]Review, error) {
	if !session.IsAdmin() {
		if session.EmployeeID == "" {
			return nil, ErrEmployeeProfileMissing
		}
		filter.Participant = session.EmployeeID
	}
	return s.store.ListReviews(ctx, session.OrganizationID, filter)
}

// GetReview loads a review with its ratings. Only admins and the two
// parties to the review can read it.
func (s *Service) GetReview(ctx context.Context, session auth.Session, reviewID string) (Review, error) {
	review, err := s.store.GetReview(ctx, session.OrganizationID, reviewID)
	if err != nil {
		return Review{}, err
	}
	if !session.IsAdmin() && !auth.IsReviewer(session, deref(review.ReviewerID)) && !auth.IsReviewee(session, review.EmployeeID) {
		return Review{}, ErrForbidden
	}
	if review.Ratings, err = s.store.ListRatings(ctx, reviewID); err != nil {
		return Review{}, err
	}
	return review, nil
}

// SaveReview stores the reviewer's form with status Draft, In Progress or
// Completed. The weighted aggregate over active categories is written to both
// overall and final rating; completing stamps the reviewed date.
func (s *Service) SaveReview(ctx context.Context, session auth.Session, reviewID string, in ReviewInput, status string) (Review, error) {
	if !ValidSaveStatus(status) {
		return Review{}, ErrInvalidReviewStatus
	}
	for _, r := range in.Ratings {
		if !ValidRating(r.Rating) {
			return Review{}, ErrInvalidRating
		}
	}
	review, err := s.store.GetReview(ctx, session.OrganizationID, reviewID)
	if err != nil {
		return Review{}, err
	}
	if !auth.IsEditable(auth.IsReviewer(session, deref(review.ReviewerID)), review.Status) {
		return Review{}, ErrReviewNotEditable
	}

	categories, err := s.store.ListReviewCategories(ctx, session.OrganizationID, true)
	if err != nil {
		return Review{}, err
	}
	overall := AggregateRating(categories, in.Ratings)

	update := ReviewUpdate{
		Status:              status,
		OverallRating:       overall,
		FinalRating:         overall,
		Strengths:           in.Strengths,
		AreasForImprovement: in.AreasForImprovement,
		Achievements:        in.Achievements,
		GoalsForNextPeriod:  in.GoalsForNextPeriod,
		ManagerComments:     in.ManagerComments,
	}
	if status == ReviewCompleted {
		now := s.now()
		update.ReviewedDate = &now
	}

	ratings := make([]Rating, 0, len(categories))
	for _, c := range categories {
		r := in.Ratings[c.ID]
		ratings = append(ratings, Rating{CategoryID: c.ID, Rating: r.Rating, Comments: r.Comments})
	}
	if err := s.store.SaveReview(ctx, session.OrganizationID, reviewID, update, ratings); err != nil {
		return Review{}, err
	}

	if status == ReviewCompleted {
		s.notify(ctx, notifications.Notification{
			OrganizationID: session.OrganizationID,
			EmployeeID:     review.EmployeeID,
			Title:          notifications.TitleReviewShared,
			Message:        fmt.Sprintf("Your %s review is ready. Overall rating: %.2f", review.ReviewType, overall),
			Type:           notifications.TypeSuccess,
			RelatedID:      reviewID,
		})
	}

	review.Status = update.Status
	review.OverallRating = update.OverallRating
	review.FinalRating = update.FinalRating
	review.Strengths = update.Strengths
	review.AreasForImprovement = update.AreasForImprovement
	review.Achievements = update.Achievements
	review.GoalsForNextPeriod = update.GoalsForNextPeriod
	review.ManagerComments = update.ManagerComments
	review.ReviewedDate = update.ReviewedDate
	review.Ratings = ratings
	return review, nil
}

// Respond records the reviewed employee's comments on a completed review.
func (s *Service) Respond(ctx context.Context, session auth.Session, reviewID, comments string) (Review, error) {
	review, err := s.store.GetReview(ctx, session.OrganizationID, reviewID)
	if err != nil {
		return Review{}, err
	}
	if !auth.CanRespond(auth.IsReviewee(session, review.EmployeeID), review.Status) {
		return Review{}, ErrCannotRespond
	}
	comments = strings.TrimSpace(comments)
	if err := s.store.UpdateEmployeeComments(ctx, session.OrganizationID, reviewID, comments); err != nil {
		return Review{}, err
	}
	review.EmployeeComments = comments
	return review, nil
}

func (s *Service) Approve(ctx context.Context, session auth.Session, reviewID string) (Review, error) {
	if !session.IsAdmin() {
		return Review{}, ErrForbidden
	}
	review, err := s.store.GetReview(ctx, session.OrganizationID, reviewID)
	if err != nil {
		return Review{}, err
	}
	if review.Status != ReviewCompleted {
		return Review{}, ErrReviewNotCompleted
	}
	if err := s.store.UpdateReviewStatus(ctx, session.OrganizationID, reviewID, ReviewApproved); err != nil {
		return Review{}, err
	}
	review.Status = ReviewApproved
	return review, nil
}

func (s *Service) ReviewPDF(ctx context.Context, session auth.Session, reviewID string) ([]byte, error) {
	review, err := s.GetReview(ctx, session, reviewID)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListReviewCategories(ctx, session.OrganizationID, true)
	if err != nil {
		return nil, err
	}
	return RenderReviewPDF(review, categories)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
