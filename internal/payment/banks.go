package payment

// Banks is the list of banks the clinic accepts transfers from, as
// configured by the billing desk.
var Banks = []string{
	"Access Bank",
	"First Bank",
	"GTBank",
	"Zenith Bank",
	"UBA",
	"Fidelity Bank",
	"Stanbic IBTC",
	"Ecobank",
	"Union Bank",
	"Wema Bank",
}

func KnownBank(name string) bool {
	for _, b := range Banks {
		if b == name {
			return true
		}
	}

	return false
}
