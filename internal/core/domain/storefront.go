package domain

import "time"

type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "credit"
	PaymentPix    PaymentMethod = "pix"
	PaymentBoleto PaymentMethod = "boleto"
)

type CardDetails struct {
	Number   string
	Name     string
	ExpMonth string
	ExpYear  string
	CVV      string
}

type Payment struct {
	Method  PaymentMethod
	Amount  float64
	OrderID string
	Card    *CardDetails
}

type PaymentResult struct {
	TransactionID string
	Status        string
	Timestamp     time.Time
}

// IncomingMessage é uma mensagem de texto recebida pelo webhook de mensageria.
type IncomingMessage struct {
	From string
	Name string
	Body string
}
