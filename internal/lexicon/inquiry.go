package lexicon

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

type CreateInquiryOptions struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	content.StateOption
}

func (o CreateInquiryOptions) Validate() error {
	var c operation.Checker
	checkName(&c, o.Name)
	c.Email("email", o.Email, "Please enter a valid email address.")
	c.MaxLength("email", o.Email, 255)
	c.Length("message", o.Message, 10, 10000, "Message must be at least 10 characters.")
	o.CheckState(&c)
	return c.Err()
}

// NewCreateInquiry records a contact message. Inquiries are published
// unless an admin says otherwise.
func NewCreateInquiry(opts CreateInquiryOptions) *content.Create[*entity.Inquiry, CreateInquiryOptions] {
	return content.NewCreate(InquiryKind, opts, func(_ context.Context, _ database.Queryer, o CreateInquiryOptions) (*entity.Inquiry, error) {
		return &entity.Inquiry{Name: o.Name, Email: o.Email, Message: o.Message}, nil
	})
}

func NewFindInquiries(opts content.FindOptions) *content.Find[*entity.Inquiry] {
	return content.NewFind(InquiryKind, opts)
}

func NewGetInquiry(opts content.GetOptions) *content.Get[*entity.Inquiry] {
	return content.NewGet(InquiryKind, opts)
}
