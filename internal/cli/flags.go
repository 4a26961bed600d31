package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
)

func parseOptionalUUID(flag, value string) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %q is not a valid id", flag, value)
	}
	return &id, nil
}

func parseStatus(value string) (domain.TaskStatus, error) {
	status := domain.TaskStatus(strings.TrimSpace(value))
	if status != "" && !status.Valid() {
		return "", fmt.Errorf("--status: must be todo, in_progress or done")
	}
	return status, nil
}

func parseMonth(value int) (time.Month, error) {
	if value < 0 || value > 12 {
		return 0, fmt.Errorf("--month: must be between 1 and 12")
	}
	return time.Month(value), nil
}
