package payments

// promoCodes is the fixed discount lookup table, percent off the base
// assessment fee.
var promoCodes = map[string]int{
	"FIRSTTIME": 10,
	"CAREPLUS":  5,
	"REFERRAL":  15,
}
