package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receipt-extract/pkg/extract"
)

func TestRowFromRecordBroad(t *testing.T) {
	rec := extract.Extract("3.jpg",
		"From: Alice Khan To: Bob Shah Amount: Rs. 1,250.00 Transaction ID: TXN99123 Transaction Successful",
		extract.NewBroadRegistry())
	row := rowFromRecord(rec)

	assert.Equal(t, "3.jpg", row.Image)
	assert.Equal(t, "broad", row.Registry)
	require.NotNil(t, row.Sender)
	assert.Equal(t, "Alice Khan", *row.Sender)
	require.NotNil(t, row.TransactionID)
	assert.Equal(t, "TXN99123", *row.TransactionID)
	assert.Nil(t, row.BankDetails)
	assert.Nil(t, row.TotalAmount)
	assert.False(t, row.Failed)
}

func TestRowFromRecordBankSplit(t *testing.T) {
	rec := extract.Extract("7.jpg",
		"Source Acc. Title John Doe Source Bank HBL Destination Bank UBL Total Amount 4,000",
		extract.NewBankSplitRegistry())
	row := rowFromRecord(rec)

	assert.Equal(t, "banksplit", row.Registry)
	require.NotNil(t, row.TotalAmount)
	assert.Equal(t, "4000", *row.TotalAmount)
	require.NotNil(t, row.SenderBank)
	assert.Equal(t, "HBL", *row.SenderBank)
	assert.Nil(t, row.Amount)
}
