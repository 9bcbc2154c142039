package domain

import "time"

// PlatformType identifica el sistema de tickets de origen.
type PlatformType string

const (
	PlatformZendesk PlatformType = "zendesk"
	PlatformGitHub  PlatformType = "github"
	PlatformPlain   PlatformType = "plain"
	PlatformOther   PlatformType = "other"
)

// AuthorType distingue mensajes del cliente ("user") y del equipo de soporte ("member").
type AuthorType string

const (
	AuthorUser   AuthorType = "user"
	AuthorMember AuthorType = "member"
)

// AttributeData son los atributos personalizados que envía la plataforma de tickets.
// Los valores conservan el tipo JSON original (string, json.Number, bool, objetos, arrays).
type AttributeData map[string]any

// File es un adjunto de un mensaje.
type File struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Message es un elemento del historial de conversación de un ticket.
// El orden lo define quien llama y no se reordena.
type Message struct {
	ID                string     `json:"id"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
	Content           string     `json:"content"`
	AuthorID          string     `json:"authorId"`
	AuthorType        AuthorType `json:"authorType" binding:"oneof=user member"`
	AuthorName        *string    `json:"authorName,omitempty"`
	Files             []File     `json:"files"`
	IsInternalComment *bool      `json:"isInternalComment,omitempty"`
}

// ContextRequest es el payload validado del hook de contexto del copiloto.
type ContextRequest struct {
	TicketID              string        `json:"ticketId"`
	TicketingPlatformType PlatformType  `json:"ticketingPlatformType" binding:"oneof=zendesk github plain other"`
	TicketAttributesData  AttributeData `json:"ticketAttributesData"`
	UserAttributesData    AttributeData `json:"userAttributesData"`
	OrgAttributesData     AttributeData `json:"orgAttributesData"`
	Messages              []Message     `json:"messages" binding:"dive"`
}

// Attribute es un dato etiquetado sobre el usuario o la organización.
type Attribute struct {
	Label       string  `json:"label"`
	Value       string  `json:"value"`
	Description *string `json:"description"`
	UseWhen     *string `json:"useWhen"`
}

// ContextResponse es lo que recibe el copiloto. Cada campo es opcional:
// un slice nil se serializa como null y uno vacío como [].
type ContextResponse struct {
	UserAttributes         []Attribute `json:"userAttributes"`
	OrganizationAttributes []Attribute `json:"organizationAttributes"`
	Prompt                 *string     `json:"prompt"`
}
