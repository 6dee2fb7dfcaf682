package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"

	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/types"
)

// WriteSuccess writes the {message, info} envelope.
func WriteSuccess(w http.ResponseWriter, status int, message string, info any) {
	var raw json.RawMessage
	if info != nil {
		encoded, err := json.Marshal(info)
		if err != nil {
			log.Printf(`{"level":"error","msg":"failed to encode info","err":"%v"}`, err)
			writeJSON(w, http.StatusInternalServerError, types.ErrorBody{Detail: "internal server error", Code: string(pkgerrors.CodeInternal)})
			return
		}
		raw = encoded
	}
	writeJSON(w, status, types.Envelope{Message: message, Info: raw})
}

// WriteError maps err onto its status and writes the {detail, code} body.
// Validation errors that carry field details are written as a list of
// {loc, msg} entries.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeForbidden,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeRateLimit:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorBody{Detail: msg, Code: string(typed.Code())}
	if meta.DetailsAllowed {
		if issues := fieldIssues(typed.Details()); len(issues) > 0 {
			payload.Detail = issues
		}
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func fieldIssues(details any) []types.FieldIssue {
	fields, ok := details.(map[string]string)
	if !ok || len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	issues := make([]types.FieldIssue, 0, len(names))
	for _, name := range names {
		issues = append(issues, types.FieldIssue{Loc: []string{"body", name}, Msg: name + " " + fields[name]})
	}
	return issues
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
