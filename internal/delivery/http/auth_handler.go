package http

import (
	"encoding/base64"
	"net/http"
)

type nearLoginRequest struct {
	AccountID string `json:"accountId" validate:"required"`
	// Detached signature over the account digest, base64.
	Signature string `json:"signature" validate:"required,base64"`
	// Raw ed25519 public key, base64.
	PublicKey string `json:"publicKey" validate:"required,base64"`
}

type federatedLoginRequest struct {
	Token string `json:"token" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *HTTPHandler) LoginWithNear(w http.ResponseWriter, r *http.Request) {
	var req nearLoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	signature, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Signature is not valid base64", err)
		return
	}
	publicKey, err := base64.StdEncoding.DecodeString(req.PublicKey)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Public key is not valid base64", err)
		return
	}

	token, err := h.authService.LoginWithNear(r.Context(), req.AccountID, signature, publicKey)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, loginResponse{AccessToken: token})
}

func (h *HTTPHandler) LoginWithFederated(w http.ResponseWriter, r *http.Request) {
	var req federatedLoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.authService.LoginWithFederated(r.Context(), req.Token)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, loginResponse{AccessToken: token})
}
