package ladderhandlers

import (
	"net/http"

	ladderservice "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/application"
	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
)

// HandleGame records a match. Anonymous reporting is allowed unless the
// service policy requires an identity.
func (h *LadderHandlers) HandleGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "Game")
	defer span.End()

	var req gameRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	playedAt, err := ladderservice.ParsePlayedAt(req.PlayedAt, h.clock.Now())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	match, err := h.service.AppendMatch(ctx, ladderservice.AppendMatchRequest{
		Ladder:   pathParam(r, "ladder"),
		Outcome:  req.Outcome,
		PlayedAt: playedAt,
		Reporter: h.identity(ctx, r, req.IDToken),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMatchView(*match))
}

// HandleRemove tombstones a match. Owner only.
func (h *LadderHandlers) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "Remove")
	defer span.End()

	var req removeRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.ID <= 0 {
		h.writeError(w, r, ladderdomain.Invalid("id", "must be a positive match id"))
		return
	}

	identity := h.identity(ctx, r, req.IDToken)
	if err := h.service.RemoveMatch(ctx, pathParam(r, "ladder"), req.ID, identity); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": req.ID})
}

// HandleCreate registers a ladder owned by the caller. The name comes from the
// path; a body name, when given, must agree with it.
func (h *LadderHandlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "Create")
	defer span.End()

	var req createRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	name := pathParam(r, "ladder")
	if req.Name != "" && req.Name != name {
		h.writeError(w, r, ladderdomain.Invalid("name", "does not match the request path"))
		return
	}

	params, shape := req.params(h.defaults)
	ladder, err := h.service.CreateLadder(ctx, ladderservice.CreateLadderRequest{
		Name:   name,
		Params: params,
		Shape:  shape,
		Owner:  h.identity(ctx, r, req.IDToken),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ladder)
}

// HandleUpdateSettings replaces the ladder's rating parameters and reprojects
// its ratings. Owner only.
func (h *LadderHandlers) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "UpdateSettings")
	defer span.End()

	var req settingsRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	name := pathParam(r, "ladder")
	if req.Name != "" && req.Name != name {
		h.writeError(w, r, ladderdomain.Invalid("name", "does not match the request path"))
		return
	}

	current, err := h.service.GetLadder(ctx, name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ladder, err := h.service.UpdateSettings(ctx, ladderservice.UpdateSettingsRequest{
		Name:     name,
		Params:   req.params(current.Params),
		Identity: h.identity(ctx, r, req.IDToken),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSettingsResponse(ladder))
}

// HandleOwned answers whether the caller owns the ladder. Anonymous callers
// and missing ladders get false.
func (h *LadderHandlers) HandleOwned(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "Owned")
	defer span.End()

	var req tokenRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	owned, err := h.service.IsOwner(ctx, pathParam(r, "ladder"), h.identity(ctx, r, req.IDToken))
	if err != nil && !readMissing(err) {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, owned)
}

// HandleOwnedBy lists the ladders the caller owns.
func (h *LadderHandlers) HandleOwnedBy(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "OwnedBy")
	defer span.End()

	var req tokenRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	names, err := h.service.OwnedBy(ctx, h.identity(ctx, r, req.IDToken))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// HandleReproject rebuilds the ladder's standings from its ledger. Owner only.
// A queued reprojection answers 202.
func (h *LadderHandlers) HandleReproject(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "Reproject")
	defer span.End()

	var req tokenRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.service.Reproject(ctx, pathParam(r, "ladder"), h.identity(ctx, r, req.IDToken))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Queued {
		status = http.StatusAccepted
	}
	writeJSON(w, status, result)
}
