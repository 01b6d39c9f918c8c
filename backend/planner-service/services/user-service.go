package services

import (
	"context"
	"unicode/utf8"

	"planner-board/backend/planner-service/models"
	"planner-board/backend/planner-service/repositories"

	"github.com/sirupsen/logrus"
)

const (
	// MinSearchLength is the shortest query sent to the directory.
	MinSearchLength    = 2
	DefaultSearchLimit = 10
)

// UserService backs the assignee autocomplete.
type UserService struct {
	directory repositories.Directory
	limit     int
	logger    logrus.FieldLogger
}

func NewUserService(directory repositories.Directory, limit int, logger logrus.FieldLogger) *UserService {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &UserService{directory: directory, limit: limit, logger: logger}
}

// Search never fails: short queries and lookup errors yield no suggestions.
func (s *UserService) Search(ctx context.Context, query string) []models.UserSuggestion {
	suggestions := []models.UserSuggestion{}
	if utf8.RuneCountInString(query) < MinSearchLength {
		return suggestions
	}

	users, err := s.directory.SearchUsers(ctx, query, s.limit)
	if err != nil {
		s.logger.WithField("query", query).Warnf("Event ID: USER_SEARCH_FAILED, Description: %v", err)
		return suggestions
	}
	for _, u := range users {
		if len(suggestions) == s.limit {
			break
		}
		suggestions = append(suggestions, models.UserSuggestion{Name: u.Name, Email: u.Email})
	}
	return suggestions
}
