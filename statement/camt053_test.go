package statement

import (
	"errors"
	"strings"
	"testing"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
)

const camt = `<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:camt.053.001.02">
  <BkToCstmrStmt>
    <GrpHdr><MsgId>STMT-1</MsgId></GrpHdr>
    <Stmt>
      <Id>1</Id>
      <Ntry>
        <Amt Ccy="EUR">1500.00</Amt>
        <CdtDbtInd>CRDT</CdtDbtInd>
        <Sts>BOOK</Sts>
        <BookgDt><Dt>2025-03-01</Dt></BookgDt>
        <AddtlNtryInf>NOMINA   MARZO</AddtlNtryInf>
      </Ntry>
      <Ntry>
        <Amt Ccy="EUR">42.10</Amt>
        <CdtDbtInd>DBIT</CdtDbtInd>
        <Sts>BOOK</Sts>
        <BookgDt><DtTm>2025-03-04T08:30:00</DtTm></BookgDt>
        <NtryDtls><TxDtls><RmtInf><Ustrd>SUPERMERCADO</Ustrd><Ustrd>CENTRO</Ustrd></RmtInf></TxDtls></NtryDtls>
      </Ntry>
      <Ntry>
        <Amt Ccy="EUR">9.99</Amt>
        <CdtDbtInd>DBIT</CdtDbtInd>
        <Sts>PDNG</Sts>
        <BookgDt><Dt>2025-03-05</Dt></BookgDt>
      </Ntry>
      <Ntry>
        <Amt Ccy="EUR">20.00</Amt>
        <CdtDbtInd>DBIT</CdtDbtInd>
        <RvslInd>true</RvslInd>
        <Sts>BOOK</Sts>
        <ValDt><Dt>2025-03-06</Dt></ValDt>
        <NtryDtls><TxDtls><RltdPties><Dbtr><Nm>Tienda</Nm></Dbtr></RltdPties></TxDtls></NtryDtls>
      </Ntry>
    </Stmt>
  </BkToCstmrStmt>
</Document>`

func TestParseCamt053(t *testing.T) {
	txs, err := ParseCamt053(strings.NewReader(camt))
	if err != nil {
		t.Fatalf("ParseCamt053() failed: %v", err)
	}
	want := []struct {
		on          string
		kind        pocket.Kind
		amount      float64
		description string
	}{
		{"2025-03-01", pocket.Income, 1500, "NOMINA MARZO"},
		{"2025-03-04", pocket.Expense, 42.10, "SUPERMERCADO CENTRO"},
		{"2025-03-06", pocket.Income, 20, "Tienda"},
	}
	if len(txs) != len(want) {
		t.Fatalf("ParseCamt053() returned %d entries, want %d: %v", len(txs), len(want), txs)
	}
	for i, w := range want {
		got := txs[i]
		if got.Date != date.MustParse(w.on) || got.Type != w.kind || got.Description != w.description || got.Category != Category {
			t.Errorf("entry #%d = %s %s %q %q, want %s %s %q %q", i, got.Date, got.Type, got.Description, got.Category, w.on, w.kind, w.description, Category)
		}
		if want := pocket.M(w.amount, "EUR"); !got.Amount.Equal(want) {
			t.Errorf("entry #%d amount = %v, want %v", i, got.Amount, want)
		}
	}
}

func TestParseCamt053_Invalid(t *testing.T) {
	tests := []struct {
		name, xml string
	}{
		{"not xml", "hello"},
		{"not a statement", `<Document><Other/></Document>`},
		{"no date", `<Document><BkToCstmrStmt><Stmt><Ntry><Amt Ccy="EUR">1</Amt><CdtDbtInd>DBIT</CdtDbtInd></Ntry></Stmt></BkToCstmrStmt></Document>`},
		{"bad indicator", `<Document><BkToCstmrStmt><Stmt><Ntry><Amt Ccy="EUR">1</Amt><CdtDbtInd>X</CdtDbtInd><BookgDt><Dt>2025-01-01</Dt></BookgDt></Ntry></Stmt></BkToCstmrStmt></Document>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCamt053(strings.NewReader(tt.xml)); err == nil {
				t.Error("ParseCamt053() succeeded, want an error")
			}
		})
	}

	_, err := ParseCamt053(strings.NewReader(`<Document><Other/></Document>`))
	if !errors.Is(err, pocket.ErrInvalid) {
		t.Errorf("ParseCamt053(not a statement) = %v, want ErrInvalid", err)
	}
}
