package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParentRefValidate(t *testing.T) {
	id := uuid.New()

	assert.NoError(t, ParentRef{Kind: ParentProduct, ID: id}.Validate())
	assert.NoError(t, ParentRef{Kind: ParentShipment, ID: id}.Validate())

	assert.ErrorIs(t, ParentRef{}.Validate(), ErrDocumentParent)
	assert.ErrorIs(t, ParentRef{Kind: ParentProduct}.Validate(), ErrDocumentParent)
	assert.ErrorIs(t, ParentRef{ID: id}.Validate(), ErrDocumentParent)
	assert.ErrorIs(t, ParentRef{Kind: ParentKind("payment"), ID: id}.Validate(), ErrDocumentParent)
}

func TestValidDocumentType(t *testing.T) {
	for _, dt := range []DocumentType{
		DocCertificateOfOrigin, DocQualityInspection, DocCustomsDeclaration,
		DocBillOfLading, DocInvoice, DocPackingList, DocInsuranceCertificate,
		DocPhytosanitaryCertificate, DocOther,
	} {
		assert.True(t, ValidDocumentType(dt), "type %s", dt)
	}
	assert.False(t, ValidDocumentType(DocumentType("Diploma")))
	assert.False(t, ValidDocumentType(DocumentType("")))
}
