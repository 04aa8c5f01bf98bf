package news

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoCategories      = errors.New("at least one category is required")
	ErrTooManyCategories = fmt.Errorf("at most %d categories can be requested", MaxCategories)
)

// InvalidCategoryError reports a category that is not in the registry.
type InvalidCategoryError struct {
	Category string
	Allowed  []string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("Invalid category: %s. Allowed categories are: %s",
		e.Category, strings.Join(e.Allowed, ", "))
}
