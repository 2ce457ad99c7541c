package messages

import (
	amessages "github.com/airenas/async-api/pkg/messages"
)

const (
	st = "REFUNDO/"
	// Receipt queue name
	Receipt = st + "Receipt"
)

// ReceiptMessage asks to analyze one receipt image and back-fill its refund row
type ReceiptMessage struct {
	amessages.QueueMessage
	Bucket   string `json:"bucket"`
	FileName string `json:"fileName"`
	RefundID int64  `json:"refundID"`
}

// NewReceiptMessage creates message for the file
func NewReceiptMessage(bucket, fileName string, refundID int64) *ReceiptMessage {
	return &ReceiptMessage{QueueMessage: amessages.QueueMessage{ID: fileName},
		Bucket: bucket, FileName: fileName, RefundID: refundID}
}
