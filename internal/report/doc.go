// Package report builds everything the report page shows from the cleaned
// table: group means over the has-station / no-station partition, the three
// bar charts, the candidate expansion sites and the HTML of the page and its
// two Leaflet maps.
//
// Nothing here holds state; services.ReportService loads the tables once and
// calls into this package per request.
package report
