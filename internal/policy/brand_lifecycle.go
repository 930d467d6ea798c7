package policy

import (
	"fmt"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/models"
)

// CheckBrandTransition validates a brand status change. Any move between the two
// states is legal; re-applying the current status is rejected with NO_OP_STATE so
// duplicate approvals never go unnoticed.
func CheckBrandTransition(current, target models.BrandStatus) error {
	if !target.Valid() {
		return apperr.InvalidInput(fmt.Sprintf("unknown brand status %q", target))
	}
	if current == target {
		return apperr.New(apperr.CodeNoOpState, fmt.Sprintf("brand is already %s", target))
	}
	return nil
}
