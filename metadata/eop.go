package metadata

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/paulmach/orb/encoding/wkt"
)

// Namespaces of the EarthObservation profile, in declaration order
var Namespaces = []struct{ Prefix, URI string }{
	{"opt", "http://www.opengis.net/opt/2.1"},
	{"om", "http://www.opengis.net/om/2.0"},
	{"gml", "http://www.opengis.net/gml/3.2"},
	{"eop", "http://www.opengis.net/eop/2.1"},
	{"sar", "http://www.opengis.net/sar/2.1"},
	{"ssp", "http://www.opengis.net/ssp/2.1"},
}

const xmlDeclaration = `version="1.0" encoding="UTF-8"`

// EOP renders the record as an EarthObservation document
func EOP(record Record) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", xmlDeclaration)

	root := doc.CreateElement("ssp:EarthObservation")
	for _, ns := range Namespaces {
		root.CreateAttr("xmlns:"+ns.Prefix, ns.URI)
	}

	if record.HasTimeRange() {
		period := root.CreateElement("om:phenomenonTime").CreateElement("gml:TimePeriod")
		period.CreateElement("gml:beginPosition").SetText(record.StartDate)
		period.CreateElement("gml:endPosition").SetText(record.EndDate)
	}

	if record.WKT != "" {
		polygon, err := ParseFootprint(record.WKT)
		if err != nil {
			return nil, err
		}
		posList, count := PosList(polygon)

		elem := root.CreateElement("om:featureOfInterest").
			CreateElement("ssp:Footprint").
			CreateElement("ssp:multiExtentOf").
			CreateElement("gml:MultiSurface").
			CreateElement("gml:surfaceMembers").
			CreateElement("gml:Polygon").
			CreateElement("gml:exterior").
			CreateElement("gml:LinearRing").
			CreateElement("gml:posList")
		elem.CreateAttr("count", strconv.Itoa(count))
		elem.SetText(posList)
	}

	var eoMetadata *etree.Element
	if record.ProductType != "" {
		eoMetadata = root.CreateElement("eop:metaDataProperty").CreateElement("eop:EarthObservationMetaData")
		eoMetadata.CreateElement("eop:identifier").SetText(record.Identifier)
		eoMetadata.CreateElement("eop:productType").SetText(record.ProductType)
	}

	if len(record.VendorSpecific) > 0 {
		if eoMetadata == nil {
			eoMetadata = root.CreateElement("eop:metaDataProperty").CreateElement("eop:EarthObservationMetaData")
		}
		vendorSpecific := eoMetadata.CreateElement("eop:vendorSpecific")
		for _, kv := range record.VendorSpecific {
			info := vendorSpecific.CreateElement("eop:SpecificInformation")
			info.CreateElement("eop:localAttribute").SetText(kv.Attribute)
			info.CreateElement("eop:localValue").SetText(kv.Value)
		}
	}

	doc.Indent(2)
	return doc, nil
}

// ReadEOP parses an EarthObservation document back into a record. Titles and
// categories only live in the properties file and are not recovered.
func ReadEOP(r io.Reader) (*Record, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parse EarthObservation document: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "EarthObservation" {
		return nil, fmt.Errorf("parse EarthObservation document: unexpected root element")
	}

	record := &Record{}
	if e := root.FindElement("./om:phenomenonTime/gml:TimePeriod/gml:beginPosition"); e != nil {
		record.StartDate = strings.TrimSpace(e.Text())
	}
	if e := root.FindElement("./om:phenomenonTime/gml:TimePeriod/gml:endPosition"); e != nil {
		record.EndDate = strings.TrimSpace(e.Text())
	}
	if e := root.FindElement("./om:featureOfInterest//gml:posList"); e != nil {
		polygon, err := ParsePosList(e.Text())
		if err != nil {
			return nil, fmt.Errorf("parse footprint: %w", err)
		}
		count, err := strconv.Atoi(e.SelectAttrValue("count", ""))
		if err != nil || count != len(polygon[0]) {
			return nil, fmt.Errorf("parse footprint: count attribute does not match posList")
		}
		record.WKT = wkt.MarshalString(polygon)
	}
	if eo := root.FindElement("./eop:metaDataProperty/eop:EarthObservationMetaData"); eo != nil {
		if e := eo.SelectElement("eop:productType"); e != nil {
			record.ProductType = e.Text()
		}
		if e := eo.SelectElement("eop:identifier"); e != nil {
			record.Identifier = e.Text()
		}
		for _, info := range eo.FindElements("./eop:vendorSpecific/eop:SpecificInformation") {
			kv := KeyValue{}
			if e := info.SelectElement("eop:localAttribute"); e != nil {
				kv.Attribute = e.Text()
			}
			if e := info.SelectElement("eop:localValue"); e != nil {
				kv.Value = e.Text()
			}
			record.VendorSpecific = append(record.VendorSpecific, kv)
		}
	}
	return record, nil
}
