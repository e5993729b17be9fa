/*
Package status tracks what happened to each entry of a document package.

	            +-------------+
	            |   Report    |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+------+
	|  Entries  |           | Formatter |
	| (counts)  |           |  (UI/UX)  |
	+-----------+           +-----------+

🎯 Purpose:
- Records per-entry outcomes (modified, unchanged, cleared, failed)
- Aggregates counters for the change report
- Renders the one-line summary returned next to the sanitized document

🔄 Flow:
1. The metadata neutralizer tracks cleared entries
2. The assembler tracks every target entry
3. The engine renders Summary() once the package is written

⚡ Invariants:
- Entries() keeps first-tracked order, so reports are deterministic
- A failed entry is never counted as modified
- The summary is never embedded in the document payload

🔍 Example:

	report := status.NewReport()
	report.Track(ctx, status.EntryInfo{Name: "word/document.xml", Kind: status.KindText, Status: status.StatusModified, SpansChanged: 2})
	fmt.Println(report.Summary())
*/
package status
