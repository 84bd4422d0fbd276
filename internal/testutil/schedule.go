// Package testutil provides shared fixtures for tests across the module.
package testutil

import (
	"github.com/Veraticus/hts-classify/internal/model"
)

// CrossReferenceRate is the literal rate text carried by parts entries whose
// duty follows the article they belong to.
const CrossReferenceRate = "The rate applicable to the article of which it is a part or accessory"

func entry(code string, indent int, rate, description string) model.TariffEntry {
	return model.TariffEntry{
		Code:        code,
		Description: description,
		IndentLevel: indent,
		GeneralRate: rate,
		Unit:        "No.",
	}
}

// Schedule returns a small schedule spanning several chapters. Chapter 40
// spells "tyres" so that a query for "tires" only ever matches approximately.
func Schedule() []model.TariffEntry {
	return []model.TariffEntry{
		// Chapter 39, plastics.
		entry("3923", 0, "", "Articles for the conveyance or packing of goods, of plastics:"),
		entry("3923.30.00", 2, "3%", "Carboys, bottles, flasks and similar articles of plastics"),

		// Chapter 40, rubber.
		entry("4011", 0, "", "New pneumatic tyres, of rubber:"),
		entry("4011.10", 1, "", "Of a kind used on motor cars (including station wagons and racing cars)"),
		entry("4011.10.10", 2, "4%", "Radial tyres for motor cars"),
		entry("4011.10.10.10", 3, "", "Having a rim diameter under 33 cm"),
		entry("4011.10.10.20", 3, "", "Having a rim diameter of 33 cm or more"),
		entry("4011.10.50", 2, "4%", "Other pneumatic tyres for motor cars"),
		entry("4011.20", 1, "", "Of a kind used on buses or lorries"),
		entry("4011.20.10", 2, "4%", "Radial tyres for buses or lorries"),
		entry("4011.20.10.15", 3, "", "On-the-highway light truck tyres"),
		entry("4011.20.10.25", 3, "", "Other radial tyres for buses or lorries"),
		entry("4012", 0, "", "Retreaded or used pneumatic tyres, of rubber:"),
		entry("4012.20", 1, "", "Used pneumatic tyres"),
		entry("4012.20.10", 2, "Free", "Used pneumatic tyres of a kind used on motor cars"),

		// Chapter 44, wood.
		entry("4421", 0, "", "Other articles of wood:"),
		entry("4421.99.98", 2, "3.3%", "Other wooden articles"),

		// Chapter 70, glass.
		entry("7010", 0, "", "Carboys, bottles, flasks, jars, pots and other containers, of glass:"),
		entry("7010.90.50", 2, "Free", "Glass bottles and jars for the conveyance of goods"),

		// Chapter 84, machinery.
		entry("8471", 0, "", "Automatic data processing machines and units thereof:"),
		entry("8471.30", 1, "", "Portable automatic data processing machines, weighing not more than 10 kg"),
		entry("8471.30.01", 2, "Free", "Portable digital computers, laptops and notebooks"),
		entry("8471.41.01", 2, "Free", "Other digital computers comprising a central processing unit"),

		// Chapter 85, electrical equipment.
		entry("8517", 0, "", "Telephone sets, including smartphones and other telephones for cellular networks:"),
		entry("8517.13.00", 2, "Free", "Smartphones"),
		entry("8517.14.00", 2, "Free", "Other telephones for cellular networks or for other wireless networks"),

		// Chapter 87, vehicles.
		entry("8714", 0, "", "Parts and accessories of vehicles of headings 8711 to 8713:"),
		entry("8714.10.00", 2, "Free", "Of motorcycles (including mopeds)"),
		entry("8714.92.10", 2, "Free", "Wheel rims for bicycles"),

		// Chapter 90, instruments.
		entry("9017", 0, "", "Drawing, marking-out or mathematical calculating instruments:"),
		entry("9017.10", 1, "", "Drafting tables and machines, whether or not automatic"),
		entry("9017.10.40", 2, "Free", "Plotters"),
		entry("9017.10.80", 2, "3.9%", "Other drafting machines"),
		entry("9017.20", 1, "", "Other drawing, marking-out or mathematical calculating instruments"),
		entry("9017.20.40", 2, "4.6%", "Drawing and marking-out instruments"),
		entry("9017.20.80", 2, "Free", "Other calculating instruments"),
		entry("9017.30", 1, "", "Micrometers, calipers and gauges"),
		entry("9017.30.40", 2, "2.8%", "Micrometers and calipers"),
		entry("9017.80.00", 1, "5.3%", "Other instruments"),
		entry("9017.90", 1, "", "Parts and accessories"),
		entry("9017.90.01", 2, CrossReferenceRate, "Parts and accessories of drawing instruments"),
		entry("9017.90.0136", 3, CrossReferenceRate, "Of drafting machines"),

		// Chapter 94, furniture.
		entry("9401", 0, "", "Seats, whether or not convertible into beds, and parts thereof:"),
		entry("9401.61", 1, "", "Other seats, with wooden frames, upholstered"),
		entry("9401.61.40", 2, "Free", "Chairs of teak, upholstered"),
		entry("9401.61.60", 2, "Free", "Other upholstered chairs with wooden frames"),
	}
}
