// Package e2e provides end-to-end tests over a synthetic patent corpus.
package e2e

import (
	"fmt"
	"strings"
)

// Patent is one synthetic patent in the E2E corpus.
type Patent struct {
	ID             string
	Title          string
	Abstract       string
	Claims         []string
	Classification string
}

// QueryTestCase defines a query and the patent ID(s) that must appear in search results.
type QueryTestCase struct {
	Query          string
	ExpectedDocIDs []string
	Description    string
}

// Corpus holds patents and query test cases for E2E tests.
type Corpus struct {
	Patents      []Patent
	TestCases    []QueryTestCase
	TotalDocs    int
	TotalQueries int
}

// BuildCorpus returns a corpus of 100 patents and one query per distinct topic.
// Each topic has a signature phrase so queries can assert the right patent is returned.
func BuildCorpus() *Corpus {
	patents := buildPatents(100)
	cases := buildQueryTestCases(patents)
	return &Corpus{
		Patents:      patents,
		TestCases:    cases,
		TotalDocs:    len(patents),
		TotalQueries: len(cases),
	}
}

var topics = []struct {
	title    string
	phrase   string
	abstract string
	code     string
}{
	{"Lithium battery cell", "lithium battery electrolyte", "A lithium battery electrolyte with improved ionic conductivity for rechargeable cells.", "H01M10/0525"},
	{"Wheel hub assembly", "wheel hub bearing", "A wheel hub bearing unit mounted to a vehicle axle knuckle.", "B60B27/00"},
	{"Planetary gearbox", "planetary gear carrier", "A planetary gear carrier supporting pinions between sun and ring gears.", "F16H1/28"},
	{"Solar panel mounting", "photovoltaic module racking", "Photovoltaic module racking clamps rails to rooftop brackets.", "H02S20/23"},
	{"Wind turbine blade", "turbine blade spar", "A turbine blade spar cap made from pultruded carbon laminate.", "F03D1/06"},
	{"Heat pump compressor", "heat pump refrigerant", "A heat pump refrigerant circuit with a variable speed scroll compressor.", "F25B30/02"},
	{"Medical stent", "coronary stent strut", "A coronary stent strut pattern that expands uniformly under balloon pressure.", "A61F2/91"},
	{"Insulin pump", "insulin infusion pump", "An insulin infusion pump with occlusion detection in the cannula line.", "A61M5/142"},
	{"Toothbrush head", "toothbrush bristle tuft", "A toothbrush bristle tuft arrangement with angled cleaning filaments.", "A46B9/04"},
	{"Coffee machine", "espresso brewing chamber", "An espresso brewing chamber that pre-infuses ground coffee with hot water.", "A47J31/36"},
	{"Drone propeller guard", "quadcopter propeller guard", "A quadcopter propeller guard that folds against the arm for transport.", "B64U30/26"},
	{"Seat belt retractor", "seatbelt retractor pretensioner", "A seatbelt retractor pretensioner fired by a pyrotechnic gas generator.", "B60R22/46"},
	{"Airbag inflator", "airbag cushion inflator", "An airbag cushion inflator with staged ignition for occupant size.", "B60R21/264"},
	{"Electric motor stator", "stator winding hairpin", "A stator winding of hairpin conductors welded at the end turns.", "H02K3/12"},
	{"Inverter switching", "silicon carbide inverter", "A silicon carbide inverter with gate drivers for traction motors.", "H02M7/537"},
	{"Charging connector", "charging plug latch", "A charging plug latch that locks the connector to the vehicle inlet.", "B60L53/16"},
	{"Semiconductor lithography", "extreme ultraviolet lithography", "Extreme ultraviolet lithography mirrors with multilayer molybdenum coatings.", "G03F7/20"},
	{"Memory cell", "ferroelectric memory capacitor", "A ferroelectric memory capacitor with hafnium oxide dielectric.", "H10B53/30"},
	{"Image sensor pixel", "CMOS image sensor pixel", "A CMOS image sensor pixel with deep trench isolation between photodiodes.", "H01L27/146"},
	{"Wireless antenna", "phased array antenna", "A phased array antenna steering beams with digital phase shifters.", "H01Q3/26"},
	{"Video codec", "video compression motion vector", "Video compression motion vector prediction from neighbouring blocks.", "H04N19/52"},
	{"Network packet routing", "packet routing table lookup", "Packet routing table lookup using a compressed trie in hardware.", "H04L45/745"},
	{"Database query planner", "query optimizer join order", "A query optimizer selects join order using cardinality estimates.", "G06F16/2453"},
	{"Neural network accelerator", "neural network accelerator systolic", "A neural network accelerator systolic array multiplies weight matrices.", "G06N3/063"},
	{"Speech recognition", "speech recognition acoustic model", "Speech recognition acoustic model trained on phoneme alignments.", "G10L15/16"},
	{"Touchscreen sensor", "capacitive touchscreen electrode", "A capacitive touchscreen electrode grid of indium tin oxide.", "G06F3/044"},
	{"Water filtration", "reverse osmosis membrane", "A reverse osmosis membrane module with spiral wound feed spacers.", "B01D61/02"},
	{"Concrete admixture", "concrete superplasticizer admixture", "A concrete superplasticizer admixture based on polycarboxylate ether.", "C04B24/26"},
	{"Steel alloy", "martensitic stainless steel", "A martensitic stainless steel alloy hardened with nitrogen additions.", "C22C38/44"},
	{"Polymer foam", "polyurethane foam insulation", "Polyurethane foam insulation blown with low global warming agents.", "C08G18/48"},
	{"Herbicide composition", "glyphosate herbicide formulation", "A glyphosate herbicide formulation with surfactant adjuvants.", "A01N57/20"},
	{"Vaccine adjuvant", "vaccine adjuvant emulsion", "A vaccine adjuvant emulsion of squalene droplets.", "A61K39/39"},
	{"Antibody therapy", "monoclonal antibody binding", "A monoclonal antibody binding the receptor domain of a tumour antigen.", "C07K16/28"},
	{"Gene editing", "CRISPR guide RNA", "A CRISPR guide RNA scaffold improving editing efficiency in plant cells.", "C12N15/113"},
	{"Prosthetic knee", "prosthetic knee joint", "A prosthetic knee joint with hydraulic damping for stance control.", "A61F2/64"},
	{"Hearing aid", "hearing aid receiver", "A hearing aid receiver placed in the ear canal with a vent.", "H04R25/02"},
	{"Smart lock", "electronic door lock", "An electronic door lock actuated by a motor and a Bluetooth credential.", "E05B47/00"},
	{"Window glazing", "insulated glazing unit", "An insulated glazing unit with a warm edge spacer and argon fill.", "E06B3/66"},
	{"Elevator brake", "elevator safety brake", "An elevator safety brake gripping the guide rail on overspeed.", "B66B5/18"},
	{"Conveyor belt", "conveyor belt tracking", "Conveyor belt tracking idlers that self align the running belt.", "B65G39/16"},
	{"Packaging film", "barrier packaging film", "A barrier packaging film with an ethylene vinyl alcohol layer.", "B32B27/30"},
	{"Bottle closure", "tamper evident closure", "A tamper evident closure with a breakable band on a bottle neck.", "B65D41/34"},
	{"Printer nozzle", "inkjet printhead nozzle", "An inkjet printhead nozzle plate with piezoelectric actuators.", "B41J2/14"},
	{"Additive manufacturing", "powder bed fusion laser", "Powder bed fusion laser scanning strategy reduces residual stress.", "B22F10/28"},
	{"Robot gripper", "robotic vacuum gripper", "A robotic vacuum gripper with suction cups for parcel picking.", "B25J15/06"},
	{"Exoskeleton", "lower limb exoskeleton", "A lower limb exoskeleton assisting hip flexion with series elastic actuators.", "B25J9/00"},
	{"Bicycle derailleur", "bicycle rear derailleur", "A bicycle rear derailleur with a clutch damping chain slap.", "B62M9/122"},
	{"Ski binding", "ski binding release", "A ski binding release mechanism adjusting to skier weight.", "A63C9/08"},
	{"Golf club head", "golf club face", "A golf club face with variable thickness for ball speed.", "A63B53/04"},
	{"Fishing reel", "spinning fishing reel", "A spinning fishing reel with a sealed carbon drag.", "A01K89/01"},
}

func buildPatents(n int) []Patent {
	out := make([]Patent, 0, n)
	for i := 0; i < n; i++ {
		t := topics[i%len(topics)]
		title := t.title
		if i >= len(topics) {
			title = fmt.Sprintf("%s (%d)", t.title, i+1)
		}
		out = append(out, Patent{
			ID:             fmt.Sprintf("US2024%04d", i+1),
			Title:          title,
			Abstract:       t.abstract,
			Claims:         []string{fmt.Sprintf("1. A device comprising a %s.", t.phrase)},
			Classification: t.code,
		})
	}
	return out
}

func buildQueryTestCases(patents []Patent) []QueryTestCase {
	var cases []QueryTestCase
	for _, t := range topics {
		var ids []string
		for _, p := range patents {
			if containsPhrase(p, t.phrase) {
				ids = append(ids, p.ID)
			}
		}
		if len(ids) == 0 {
			continue
		}
		cases = append(cases, QueryTestCase{
			Query:          t.phrase,
			ExpectedDocIDs: ids,
			Description:    fmt.Sprintf("query %q should return %s", t.phrase, ids[0]),
		})
	}
	return cases
}

func containsPhrase(p Patent, phrase string) bool {
	phrase = strings.ToLower(phrase)
	return strings.Contains(strings.ToLower(p.Abstract), phrase) ||
		strings.Contains(strings.ToLower(strings.Join(p.Claims, " ")), phrase)
}
