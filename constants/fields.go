package constants

// RCFieldKeys is the closed, canonical set of RC record field keys, in
// document order. The extractor never produces keys outside this list, and
// export/report columns follow this ordering.
//
// Canonical spellings: "colour" (not color), "mfr" (not maker), "fitUpto"
// (not fitnessUpto). The alternates survive only as caption aliases inside
// the extraction rule table.
var RCFieldKeys = []string{
	"regNo",
	"regDate",
	"formNumber",
	"oSlNo",
	"chassisNo",
	"engineNo",
	"mfr",
	"model",
	"variant",
	"vehicleClass",
	"colour",
	"body",
	"wheelBase",
	"mfgDate",
	"fuel",
	"regFcUpto",
	"taxUpto",
	"fitUpto",
	"insuranceUpto",
	"noOfCyl",
	"unladenWt",
	"seating",
	"stdgSlpr",
	"cc",
	"ownerName",
	"swdOf",
	"address",
}

// RCFieldLabels maps canonical keys to human-facing column labels.
var RCFieldLabels = map[string]string{
	"regNo":         "Registration No.",
	"regDate":       "Registration Date",
	"formNumber":    "Form Number",
	"oSlNo":         "O.SL.No",
	"chassisNo":     "Chassis No.",
	"engineNo":      "Engine No.",
	"mfr":           "Manufacturer",
	"model":         "Model",
	"variant":       "Variant",
	"vehicleClass":  "Vehicle Class",
	"colour":        "Colour",
	"body":          "Body Type",
	"wheelBase":     "Wheel Base",
	"mfgDate":       "Mfg. Date",
	"fuel":          "Fuel",
	"regFcUpto":     "Reg/FC Valid Upto",
	"taxUpto":       "Tax Valid Upto",
	"fitUpto":       "Fitness Valid Upto",
	"insuranceUpto": "Insurance Valid Upto",
	"noOfCyl":       "No. of Cylinders",
	"unladenWt":     "Unladen Weight",
	"seating":       "Seating Capacity",
	"stdgSlpr":      "Stdg/Slpr",
	"cc":            "Cubic Capacity",
	"ownerName":     "Owner Name",
	"swdOf":         "S/W/D Of",
	"address":       "Address",
}
