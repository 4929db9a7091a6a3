package contract

import (
	"fmt"

	"adminportal/internal/domain/forms"
)

const (
	KeyTimestamp     = "時間戳記"
	KeyAppliedOn     = "申請日期"
	KeyEmail         = "電子郵件"
	KeyAttachment    = "請上傳合約電子檔"
	KeyApplicant     = "申請人"
	KeyProjectCode   = "計畫代碼"
	KeyProjectName   = "計畫名稱"
	KeyPurpose       = "申請事由"
	KeyName          = "合約名稱"
	KeyType          = "合約類型"
	KeyOriginals     = "合約正本份數"
	KeyCopies        = "合約副本份數"
	KeyStartDate     = "合約起始日期"
	KeyEndDate       = "合約結束日期"
	KeyFlow          = "合約金流"
	KeyCurrency      = "合約幣值"
	KeyAmountNet     = "合約金額未稅"
	KeyAmountGross   = "合約金額含稅"
	KeyBank          = "收款付款銀行"
	KeyVendor        = "簽約廠商名稱"
	KeyVendorTaxID   = "簽約廠商統編"
	KeyVendorSigner  = "簽約代表人"
	KeyVendorContact = "廠商聯絡人"
	KeyVendorPhone   = "廠商聯絡電話"
	KeyWarranty      = "保固期間"
	KeyDeliveryDate  = "預計交付日"
	KeyDeliveryDays  = "交付後多少工作日後"
	KeyTerm          = "合約收款付款期款"

	KeyTypeOther     = "合約類型其他"
	KeyCurrencyOther = "合約幣值其他"
	KeyWarrantyOther = "保固期間其他"

	// Number is assigned by the back office once the contract is established.
	KeyNumber = "合約編號"
)

const MaxInstallments = 5

var (
	ContractTypes = []string{"一般合約", "採購合約", "銷售合約", "服務合約"}
	Currencies    = []string{"新台幣", "美金", "人民幣", "歐元"}
	Flows         = []string{"收款", "付款"}
	Warranties    = []string{"無", "一年", "二年", "三年"}

	// TermLabels index i enables installments 1..i+1.
	TermLabels = []string{"一期款", "二期款", "三期款", "四期款", "五期款"}
)

const (
	sectionApplicant = "基本資訊"
	sectionContract  = "合約資訊"
	sectionVendor    = "廠商資訊"
	sectionPayment   = "付款資訊"
)

// AmountKey and PercentKey name the two fields of installment slot 1..5.
func AmountKey(slot int) string {
	return TermLabels[slot-1] + "未稅金額"
}

func PercentKey(slot int) string {
	return TermLabels[slot-1] + "合約占比"
}

// TermCount maps a term label to the number of enabled installments.
func TermCount(label string) (int, bool) {
	for i, l := range TermLabels {
		if l == label {
			return i + 1, true
		}
	}
	return 0, false
}

var DraftSchema = forms.NewSchema("contract", fields()...)

func fields() []forms.Field {
	out := []forms.Field{
		{Key: KeyTimestamp, Label: "時間戳記", Section: sectionApplicant, Kind: forms.KindDateTime, Rule: "required"},
		{Key: KeyAppliedOn, Label: "申請日期", Section: sectionApplicant, Kind: forms.KindDate, Rule: "required"},
		{Key: KeyEmail, Label: "電子郵件", Section: sectionApplicant, Kind: forms.KindText, Rule: "required,email"},
		{Key: KeyAttachment, Label: "合約電子檔", Section: sectionApplicant, Kind: forms.KindText},
		{Key: KeyApplicant, Label: "申請人", Section: sectionApplicant, Kind: forms.KindText, Rule: "required"},
		{Key: KeyProjectCode, Label: "計畫代碼", Section: sectionApplicant, Kind: forms.KindText, Rule: "required"},
		{Key: KeyProjectName, Label: "計畫名稱", Section: sectionApplicant, Kind: forms.KindText, Rule: "required"},
		{Key: KeyPurpose, Label: "申請事由", Section: sectionApplicant, Kind: forms.KindText, Rule: "required"},

		{Key: KeyName, Label: "合約名稱", Section: sectionContract, Kind: forms.KindText, Rule: "required"},
		{Key: KeyType, Label: "合約類型", Section: sectionContract, Kind: forms.KindSelect, Options: ContractTypes, OtherKey: KeyTypeOther, Default: ContractTypes[0], Rule: "required"},
		{Key: KeyTypeOther, Label: "其他合約類型", Section: sectionContract, Kind: forms.KindText, Side: true},
		{Key: KeyOriginals, Label: "合約正本份數", Section: sectionContract, Kind: forms.KindInteger, Default: "1", Rule: "gte=1"},
		{Key: KeyCopies, Label: "合約副本份數", Section: sectionContract, Kind: forms.KindInteger, Default: "1", Rule: "gte=0"},
		{Key: KeyStartDate, Label: "合約起始日期", Section: sectionContract, Kind: forms.KindDate, Rule: "required"},
		{Key: KeyEndDate, Label: "合約結束日期", Section: sectionContract, Kind: forms.KindDate, Rule: "required"},
		{Key: KeyFlow, Label: "合約金流", Section: sectionContract, Kind: forms.KindSelect, Options: Flows, Default: Flows[0], Rule: "required"},
		{Key: KeyCurrency, Label: "合約幣值", Section: sectionContract, Kind: forms.KindSelect, Options: Currencies, OtherKey: KeyCurrencyOther, Default: Currencies[0], Rule: "required"},
		{Key: KeyCurrencyOther, Label: "其他幣值", Section: sectionContract, Kind: forms.KindText, Side: true},
		{Key: KeyAmountNet, Label: "合約金額(未稅)", Section: sectionContract, Kind: forms.KindMoney, Default: "0"},
		{Key: KeyAmountGross, Label: "合約金額(含稅)", Section: sectionContract, Kind: forms.KindMoney, Default: "0"},
		{Key: KeyBank, Label: "收款/付款銀行", Section: sectionContract, Kind: forms.KindText},

		{Key: KeyVendor, Label: "簽約廠商名稱", Section: sectionVendor, Kind: forms.KindText, Rule: "required"},
		{Key: KeyVendorTaxID, Label: "簽約廠商統編", Section: sectionVendor, Kind: forms.KindText, Rule: "omitempty,numeric,len=8"},
		{Key: KeyVendorSigner, Label: "簽約代表人", Section: sectionVendor, Kind: forms.KindText},
		{Key: KeyVendorContact, Label: "廠商聯絡人", Section: sectionVendor, Kind: forms.KindText},
		{Key: KeyVendorPhone, Label: "廠商聯絡電話", Section: sectionVendor, Kind: forms.KindText, Rule: "omitempty,max=32"},
		{Key: KeyWarranty, Label: "保固期間", Section: sectionVendor, Kind: forms.KindSelect, Options: Warranties, OtherKey: KeyWarrantyOther},
		{Key: KeyWarrantyOther, Label: "其他保固期間", Section: sectionVendor, Kind: forms.KindText, Side: true},
		{Key: KeyDeliveryDate, Label: "預計交付日", Section: sectionVendor, Kind: forms.KindDate},
		{Key: KeyDeliveryDays, Label: "交付後多少工作日後", Section: sectionVendor, Kind: forms.KindInteger, Default: "0", Rule: "gte=0"},

		{Key: KeyTerm, Label: "合約收款/付款期款", Section: sectionPayment, Kind: forms.KindSelect, Options: TermLabels, Default: TermLabels[0], Rule: "required"},
	}
	for slot := 1; slot <= MaxInstallments; slot++ {
		out = append(out,
			forms.Field{Key: AmountKey(slot), Label: AmountKey(slot), Section: sectionPayment, Kind: forms.KindMoney, Default: "0"},
			forms.Field{Key: PercentKey(slot), Label: fmt.Sprintf("%s(%%)", PercentKey(slot)), Section: sectionPayment, Kind: forms.KindPercent, Default: "0"},
		)
	}
	return out
}
