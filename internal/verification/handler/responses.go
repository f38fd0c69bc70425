package handler

import (
	"encoding/base64"

	reghandler "sigil/internal/registry/handler"
	"sigil/internal/verification"
)

// ProofStartedResponse acknowledges a started proof. MaskedEmail is only
// set for document proofs, where the requester does not know the inbox
// the code went to.
type ProofStartedResponse struct {
	Delivery    string `json:"delivery"`
	MaskedEmail string `json:"maskedEmail,omitempty"`
}

// OwnerResponse is the owner identity disclosed by a document proof.
type OwnerResponse struct {
	Address string `json:"address"`
	Email   string `json:"email"`
}

// DisclosureResponse is the HTTP response for a confirmed document
// proof.
type DisclosureResponse struct {
	Document *reghandler.DocumentResponse `json:"document"`
	Owner    OwnerResponse                `json:"owner"`
	Photo    string                       `json:"photo,omitempty"`
}

// FromDisclosure converts a disclosure to its HTTP response.
func FromDisclosure(d *verification.Disclosure) *DisclosureResponse {
	resp := &DisclosureResponse{
		Document: reghandler.FromDocument(d.Document),
		Owner: OwnerResponse{
			Address: d.Owner.Address.String(),
			Email:   d.Owner.Email,
		},
	}
	if len(d.Photo) > 0 {
		resp.Photo = base64.StdEncoding.EncodeToString(d.Photo)
	}
	return resp
}
