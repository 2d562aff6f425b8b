package core

import (
	"fmt"

	"github.com/cadenceworks/foreman/internal/utils"
	"github.com/cadenceworks/foreman/pkg/errors"
	"github.com/cadenceworks/foreman/pkg/structs"
)

func validateTaskSpec(t *structs.TaskSpec) error {
	if len(t.Name) > maxNameLength {
		return fmt.Errorf("%w task name %s is %d chars, max %d", errors.ErrMaxExceeded, t.Name, len(t.Name), maxNameLength)
	}
	if t.Type == "" {
		return errors.ErrNoTaskType
	}
	if len(t.Type) > maxTypeLength {
		return fmt.Errorf("%w task type %s is %d chars, max %d", errors.ErrMaxExceeded, t.Type, len(t.Type), maxTypeLength)
	}
	if t.Args != nil && len(t.Args) > maxArgsLength {
		return fmt.Errorf("%w task args is %d bytes, max %d", errors.ErrMaxExceeded, len(t.Args), maxArgsLength)
	}
	for _, r := range t.Reservations {
		if r.Resource == "" {
			return fmt.Errorf("%w reservation resource must not be empty", errors.ErrInvalidArg)
		}
		if r.Mode != "" && structs.ToMode(string(r.Mode)) == "" {
			return fmt.Errorf("%w reservation mode %s", errors.ErrInvalidArg, r.Mode)
		}
	}
	if t.ParentID != "" && !utils.IsValidID(t.ParentID) {
		return fmt.Errorf("%w parent id %s", errors.ErrInvalidArg, t.ParentID)
	}
	if t.GroupID != "" && !utils.IsValidID(t.GroupID) {
		return fmt.Errorf("%w group id %s", errors.ErrInvalidArg, t.GroupID)
	}
	return nil
}
