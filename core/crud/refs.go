package crud

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
)

// Ref is a foreign key to resolve before a write. Empty IDs are skipped (optional keys).
type Ref struct {
	Field string
	ID    string
	In    Checker
}

// CheckRefs resolves every ref and reports all dangling ones at once.
func CheckRefs(ctx context.Context, refs ...Ref) error {
	var fields []core.FieldError
	var msgs []string
	for _, ref := range refs {
		if ref.ID == "" || ref.In == nil {
			continue
		}
		ok, err := ref.In.Exists(ctx, Eq("id", ref.ID))
		if err != nil {
			return errors.Wrapf(err, "checking %s", ref.Field)
		}
		if !ok {
			msg := fmt.Sprintf("%s does not exist", core.Humanize(ref.Field))
			fields = append(fields, core.FieldError{Field: ref.Field, Error: msg})
			msgs = append(msgs, msg)
		}
	}
	if len(fields) > 0 {
		return core.NewValidationError(errors.New(strings.Join(msgs, ", ")), fields...)
	}
	return nil
}
