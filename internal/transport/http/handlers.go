package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"zirrmi/internal/auth"
	"zirrmi/internal/onboarding"
	id "zirrmi/pkg/domain"
	"zirrmi/pkg/platform/httputil"
	"zirrmi/pkg/requestcontext"
)

// apply runs op on the loop, then answers with the session it left behind.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request, op func(ctx context.Context) (ActionResponse, error)) {
	ctx := r.Context()
	var (
		resp ActionResponse
		err  error
	)
	h.dispatch.Do(func() {
		resp, err = op(ctx)
		resp.Session = h.session.Snapshot()
	})
	if err != nil {
		h.logger.InfoContext(ctx, "onboarding operation refused",
			"path", r.URL.Path,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// simple adapts an operation that only reports an error.
func simple(op func() error) func(context.Context) (ActionResponse, error) {
	return func(context.Context) (ActionResponse, error) {
		return ActionResponse{}, op()
	}
}

// withCtx adapts an operation that starts an external call.
func withCtx(op func(ctx context.Context) error) func(context.Context) (ActionResponse, error) {
	return func(ctx context.Context) (ActionResponse, error) {
		return ActionResponse{}, op(ctx)
	}
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	var snap onboarding.Snapshot
	h.dispatch.Do(func() { snap = h.session.Snapshot() })
	httputil.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleGetStarted(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, simple(h.session.GetStarted))
}

func (h *Handler) handleOpenAuth(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[OpenAuthRequest](w, r, h.logger)
	if !ok {
		return
	}
	h.apply(w, r, simple(func() error { return h.session.OpenAuth(req.mode) }))
}

func (h *Handler) handleToggleAuth(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, simple(h.session.ToggleAuthMode))
}

func (h *Handler) handleAuthField(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[AuthFieldRequest](w, r, h.logger)
	if !ok {
		return
	}
	h.apply(w, r, simple(func() error { return h.session.UpdateAuthField(req.field, req.Value) }))
}

func (h *Handler) handleFillAuth(w http.ResponseWriter, r *http.Request) {
	var form auth.Form
	if err := httputil.DecodeJSON(r, &form); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.apply(w, r, simple(func() error { return h.session.FillAuth(form) }))
}

func (h *Handler) handleSubmitAuth(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, withCtx(h.session.SubmitAuth))
}

func (h *Handler) handleCloseAuth(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, simple(h.session.CloseAuth))
}

func (h *Handler) handleSelectChannel(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[ChannelRequest](w, r, h.logger)
	if !ok {
		return
	}
	h.apply(w, r, simple(func() error { return h.session.SelectChannel(req.channel) }))
}

func (h *Handler) handleSendCode(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, withCtx(h.session.SendCode))
}

func (h *Handler) handleEnterDigit(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[DigitRequest](w, r, h.logger)
	if !ok {
		return
	}
	h.apply(w, r, simple(func() error { return h.session.EnterDigit(req.Index, req.Value) }))
}

func (h *Handler) handleBackspace(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[BackspaceRequest](w, r, h.logger)
	if !ok {
		return
	}
	h.apply(w, r, simple(func() error { return h.session.Backspace(req.Index) }))
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, withCtx(h.session.Verify))
}

func (h *Handler) handleCloseVerification(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, simple(h.session.CloseVerification))
}

func (h *Handler) handleAddFacility(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(context.Context) (ActionResponse, error) {
		fid, err := h.session.AddFacility()
		if err != nil {
			return ActionResponse{}, err
		}
		return ActionResponse{FacilityID: fid.String()}, nil
	})
}

func (h *Handler) handleUpdateFacility(w http.ResponseWriter, r *http.Request) {
	fid, err := id.ParseFacilityID(chi.URLParam(r, "facilityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[FacilityFieldRequest](w, r, h.logger)
	if !ok {
		return
	}
	h.apply(w, r, func(context.Context) (ActionResponse, error) {
		applied, err := h.session.UpdateFacility(fid, req.field, req.Value)
		return ActionResponse{Applied: &applied}, err
	})
}

func (h *Handler) handleRemoveFacility(w http.ResponseWriter, r *http.Request) {
	fid, err := id.ParseFacilityID(chi.URLParam(r, "facilityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.apply(w, r, func(context.Context) (ActionResponse, error) {
		applied, err := h.session.RemoveFacility(fid)
		return ActionResponse{Applied: &applied}, err
	})
}

func (h *Handler) handleNextStep(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, simple(h.session.NextStep))
}

func (h *Handler) handlePreviousStep(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, simple(h.session.PreviousStep))
}

func (h *Handler) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, withCtx(h.session.SubmitAssessment))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, simple(h.session.Logout))
}

func (h *Handler) handleCancelLogout(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, simple(h.session.CancelLogout))
}

func (h *Handler) handleConfirmLogout(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, withCtx(h.session.ConfirmLogout))
}
